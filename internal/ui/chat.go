package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type ChatScreen struct {
	*UI
	layout    *tview.Flex
	RoomList  *tview.List
	ChatView  *tview.TextView
	Occupants *tview.TextView
	Input     *tview.InputField
	StatusBar *tview.TextView

	keys []string
	hint string
}

func (c *ChatScreen) NewChatScreen() {
	border, focus := c.Theme.BorderColors()

	c.RoomList = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(c.Theme.GetColor("background-light")).
		SetSelectedTextColor(c.Theme.GetColor("primary")).
		SetMainTextColor(c.Theme.GetColor("foreground"))
	c.RoomList.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		if i >= 0 && i < len(c.keys) {
			c.selectBuffer(c.keys[i])
			c.App.SetFocus(c.Input)
		}
	})
	c.RoomList.SetBorder(true).
		SetTitle("[ Rooms ]").
		SetBorderColor(border)

	c.ChatView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true).
		SetTextColor(c.Theme.GetColor("foreground"))
	c.ChatView.SetBorder(true).
		SetBorderColor(border).
		SetBorderPadding(0, 0, 1, 1)

	c.Occupants = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	c.Occupants.SetBorder(true).
		SetTitle("[ Occupants ]").
		SetBorderColor(border)

	c.Input = tview.NewInputField().
		SetPlaceholder("Type a message or /command...").
		SetFieldBackgroundColor(c.Theme.GetColor("input-field")).
		SetFieldTextColor(c.Theme.GetColor("foreground")).
		SetPlaceholderTextColor(c.Theme.GetColor("foreground-dark"))
	c.Input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := c.Input.GetText()
		if strings.TrimSpace(text) == "" {
			return
		}
		c.Input.SetText("")
		c.submit(text)
	})
	c.Input.SetBorder(true).
		SetBorderColor(focus)

	c.StatusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextColor(c.Theme.GetColor("foreground-dark"))

	center := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.ChatView, 0, 1, false).
		AddItem(c.Input, 3, 0, true)

	body := tview.NewFlex().
		AddItem(c.RoomList, 24, 0, false).
		AddItem(center, 0, 4, true).
		AddItem(c.Occupants, 22, 0, false)

	c.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(c.StatusBar, 1, 0, false)

	c.layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlN:
			c.cycle(1)
			return nil
		case tcell.KeyCtrlP:
			c.cycle(-1)
			return nil
		case tcell.KeyTab:
			if c.Input.HasFocus() {
				c.App.SetFocus(c.RoomList)
			} else {
				c.App.SetFocus(c.Input)
			}
			return nil
		}
		return event
	})
}

func (c *ChatScreen) refreshRooms() {
	c.keys = c.state.keys()
	c.RoomList.Clear()
	for i, key := range c.keys {
		c.RoomList.AddItem(BufferLabel(key, c.bufferName(key), c.state.unread(key)), "", 0, nil)
		if key == c.state.current {
			c.RoomList.SetCurrentItem(i)
		}
	}
}

func (c *ChatScreen) refreshChat() {
	current := c.state.current
	title := BufferLabel(current, c.bufferName(current), 0)
	if snap, ok := c.cfg.Client.Room(current); ok && snap.Subject != "" {
		title += " - " + tview.Escape(snap.Subject)
	}
	c.ChatView.SetTitle(fmt.Sprintf("[ %s ]", title))
	c.ChatView.SetText(strings.Join(c.state.lines(current), "\n"))
	c.ChatView.ScrollToEnd()
}

func (c *ChatScreen) refreshOccupants() {
	snap, ok := c.cfg.Client.Room(c.state.current)
	if !ok {
		c.Occupants.SetTitle("[ Occupants ]")
		c.Occupants.SetText("")
		return
	}
	c.Occupants.SetTitle(fmt.Sprintf("[ %d ]", len(snap.Occupants)))
	c.Occupants.SetText(strings.Join(FormatOccupants(snap.Occupants), "\n"))
}

func (c *ChatScreen) refreshStatus() {
	parts := []string{
		c.Theme.Tag("primary") + c.cfg.Client.Status().String() + "[-]",
	}
	if jid := c.cfg.Client.JID(); jid != "" {
		parts = append(parts, tview.Escape(jid))
	}
	if c.hint != "" {
		parts = append(parts, c.Theme.Tag("accent")+tview.Escape(c.hint)+"[-]")
	}
	c.StatusBar.SetText(" " + strings.Join(parts, " | "))
}
