package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tavern/internal/models"
)

func (ui *UI) modal(page, title, message string, color string, buttons []string, done func(label string)) *tview.Modal {
	modal := tview.NewModal()
	buttonStyle := tcell.StyleDefault.
		Background(ui.Theme.GetColor("background")).
		Foreground(ui.Theme.GetColor(color))
	buttonStyleActive := tcell.StyleDefault.
		Background(ui.Theme.GetColor(color)).
		Foreground(ui.Theme.GetColor("background"))
	modal.SetText(message).
		AddButtons(buttons).
		SetDoneFunc(func(_ int, buttonLabel string) {
			ui.Pages.RemovePage(page)
			ui.App.SetFocus(ui.Chat.Input)
			if done != nil {
				done(buttonLabel)
			}
		}).
		SetButtonStyle(buttonStyle).
		SetButtonActivatedStyle(buttonStyleActive)
	modal.SetBackgroundColor(ui.Theme.GetColor("modal-background")).
		SetBorder(true).
		SetBorderColor(ui.Theme.GetColor(color)).
		SetTitle(title).
		SetTitleColor(ui.Theme.GetColor(color)).
		SetTitleAlign(tview.AlignCenter)

	ui.Pages.AddPage(page, modal, true, true)
	ui.App.SetFocus(modal)
	return modal
}

func (ui *UI) autoDismiss(page string, duration time.Duration, onDismiss func()) {
	if duration <= 0 {
		return
	}
	time.AfterFunc(duration, func() {
		ui.App.QueueUpdateDraw(func() {
			if !ui.Pages.HasPage(page) {
				return
			}
			ui.Pages.RemovePage(page)
			ui.App.SetFocus(ui.Chat.Input)
			if onDismiss != nil {
				onDismiss()
			}
		})
	})
}

func (ui *UI) ShowToast(message string, duration time.Duration, onDismiss func()) {
	ui.modal("toast", "", message, "primary", []string{"OK"}, func(string) {
		if onDismiss != nil {
			onDismiss()
		}
	})
	ui.autoDismiss("toast", duration, onDismiss)
}

func (ui *UI) ShowError(title string, message string, actionName string, duration time.Duration, onDismiss func()) {
	ui.modal("error", title, message, "red", []string{actionName}, func(string) {
		if onDismiss != nil {
			onDismiss()
		}
	})
	ui.autoDismiss("error", duration, onDismiss)
}

// ShowInvite offers to join the room an invite points at.
func (ui *UI) ShowInvite(inv models.Invite) {
	ui.modal("invite", "Invitation", FormatInvite(inv), "accent", []string{"Join", "Dismiss"}, func(label string) {
		if label != "Join" {
			return
		}
		go func() {
			err := ui.cfg.Actions.JoinRoom(ui.ctx, inv.RoomJID, inv.Password)
			ui.App.QueueUpdateDraw(func() {
				ui.applyResult(consoleKey, Result{Buffer: inv.RoomJID, Focus: true}, err)
			})
		}()
	})
}
