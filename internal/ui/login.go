package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tavern/internal/client"
)

type LoginScreen struct {
	*UI
	layout *tview.Flex
	form   *tview.Form

	JID      string
	Password string
	Nick     string
}

func (l *LoginScreen) NewLoginScreen() {
	l.JID = l.cfg.Credentials.JID
	l.Nick = l.cfg.Credentials.Nick

	header := tview.NewTextView().
		SetText("tavern").
		SetTextAlign(tview.AlignCenter).
		SetTextColor(l.Theme.GetColor("accent"))

	l.form = tview.NewForm()
	bgColor, fieldBg, buttonBg, buttonText, fieldText := l.Theme.FormColors()
	l.form.SetBackgroundColor(bgColor)
	l.form.SetButtonBackgroundColor(buttonBg)
	l.form.SetButtonTextColor(buttonText)
	l.form.SetFieldBackgroundColor(fieldBg)
	l.form.SetFieldTextColor(fieldText)
	l.form.SetLabelColor(l.Theme.GetColor("primary"))
	l.form.SetBorder(true)
	l.form.SetBorderColor(l.Theme.GetColor("border"))
	l.form.SetBorderAttributes(tcell.AttrNone)
	l.form.SetButtonsAlign(tview.AlignCenter)
	l.form.SetTitle("[ Login ]")

	l.form.AddInputField("JID", l.JID, 0, nil, func(s string) { l.JID = s })
	l.form.AddPasswordField("Password", "", 0, '*', func(s string) { l.Password = s })
	l.form.AddInputField("Nick", l.Nick, 0, nil, func(s string) { l.Nick = s })
	l.form.AddButton("Connect", l.submit)
	l.form.AddButton("Quit", l.quit)

	formContainer := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(l.form, 0, 2, true).
		AddItem(nil, 0, 1, false)

	l.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(header, 1, 0, false).
		AddItem(formContainer, 11, 0, true).
		AddItem(nil, 0, 1, false)
}

// Show switches to the login page with jid prefilled.
func (l *LoginScreen) Show(jid string) {
	if jid != "" {
		l.JID = jid
		if item, ok := l.form.GetFormItemByLabel("JID").(*tview.InputField); ok {
			item.SetText(jid)
		}
	}
	l.Pages.SwitchToPage("login")
	l.App.SetFocus(l.form)
}

// Credentials returns what the form holds. A JID without a password and
// with a nick logs in anonymously.
func (l *LoginScreen) Credentials() client.Credentials {
	creds := l.cfg.Credentials
	creds.JID = l.JID
	creds.Password = l.Password
	creds.Nick = l.Nick
	return creds
}

func (l *LoginScreen) submit() {
	creds := l.Credentials()
	if l.cfg.OnLogin != nil {
		l.cfg.OnLogin(creds)
	}
	l.Pages.SwitchToPage("chat")
	l.App.SetFocus(l.Chat.Input)
	go l.connect(creds)
}
