// Package ui is the terminal view: a tview application that renders the
// client's event bus and turns the input line into actions.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rivo/tview"

	"tavern/internal/client"
	"tavern/internal/models"
	"tavern/internal/protocol"
)

var timeNow = time.Now

// Backend is the part of the client the view reads and drives.
type Backend interface {
	Connect(ctx context.Context, creds client.Credentials) error
	Disconnect(ctx context.Context) error
	Room(jid string) (client.RoomSnapshot, bool)
	RoomNick(room string) string
	JID() string
	Status() models.Status
}

type Config struct {
	Theme       *Theme
	Client      Backend
	Actions     Actions
	History     History
	Bus         *client.Bus
	Credentials client.Credentials
	// OnLogin is called with the credentials entered in the login form.
	OnLogin  func(client.Credentials)
	MaxLines int
	Log      *slog.Logger
}

type UI struct {
	App   *tview.Application
	Theme *Theme
	Pages *tview.Pages

	Login *LoginScreen
	Chat  *ChatScreen

	cfg        Config
	log        *slog.Logger
	commander  *Commander
	state      *viewState
	ctx        context.Context
	cancel     context.CancelFunc
	connecting atomic.Bool
}

func New(cfg Config) *UI {
	if cfg.Theme == nil {
		cfg.Theme = DefaultTheme()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.MaxLines == 0 {
		cfg.MaxLines = 1000
	}

	tview.Borders.HorizontalFocus = tview.Borders.Horizontal
	tview.Borders.VerticalFocus = tview.Borders.Vertical
	tview.Borders.TopLeftFocus = '╭'
	tview.Borders.TopRightFocus = '╮'
	tview.Borders.BottomLeftFocus = '╰'
	tview.Borders.BottomRightFocus = '╯'

	ui := &UI{
		App:   tview.NewApplication().EnableMouse(true),
		Theme: cfg.Theme,
		cfg:   cfg,
		log:   cfg.Log,
		state: newViewState(cfg.MaxLines),
	}
	ui.ctx, ui.cancel = context.WithCancel(context.Background())
	ui.commander = NewCommander(cfg.Actions, cfg.History, cfg.Client.RoomNick)

	tview.Styles.PrimitiveBackgroundColor = ui.Theme.GetColor("background")
	tview.Styles.TitleColor = ui.Theme.GetColor("primary")

	ui.Login = &LoginScreen{UI: ui}
	ui.Login.NewLoginScreen()
	ui.Chat = &ChatScreen{UI: ui}
	ui.Chat.NewChatScreen()

	ui.Pages = tview.NewPages().
		AddPage("chat", ui.Chat.layout, true, true).
		AddPage("login", ui.Login.layout, true, false)

	ui.App.SetRoot(ui.Pages, true).
		SetFocus(ui.Chat.Input)
	ui.refresh()
	return ui
}

// Run subscribes to the bus, starts connecting with the configured
// credentials and blocks until the application stops.
func (ui *UI) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { ui.App.QueueUpdate(ui.App.Stop) })
	defer stop()
	defer ui.cancel()

	handles := client.SubscribeAll(ui.cfg.Bus, ui.onEvent)
	defer client.Unsubscribe(ui.cfg.Bus, handles...)

	go ui.connect(ui.cfg.Credentials)
	return ui.App.Run()
}

func (ui *UI) connect(creds client.Credentials) {
	if ui.connecting.Swap(true) {
		return
	}
	defer ui.connecting.Store(false)

	err := ui.cfg.Client.Connect(ui.ctx, creds)
	if err == nil || errors.Is(err, client.ErrCredentialsRequired) || ui.ctx.Err() != nil {
		return
	}
	ui.log.Warn("connection ended", "err", err)
	ui.App.QueueUpdateDraw(func() {
		ui.state.append(consoleKey, "-!- "+err.Error())
		ui.refresh()
		ui.ShowError("Connection failed", err.Error(), "OK", 0, nil)
	})
}

// quit leaves every room, closes the stream and stops the application.
func (ui *UI) quit() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := ui.cfg.Client.Disconnect(ctx); err != nil && !errors.Is(err, client.ErrNotConnected) {
			ui.log.Warn("disconnect failed", "err", err)
		}
		ui.cancel()
		ui.App.QueueUpdate(ui.App.Stop)
	}()
}

// onEvent runs on the dispatch goroutine; the view is only touched from
// the tview loop.
func (ui *UI) onEvent(ev models.Event) {
	ui.App.QueueUpdateDraw(func() {
		ui.apply(ev)
	})
}

func (ui *UI) apply(ev models.Event) {
	switch e := ev.(type) {
	case models.ChatEvent:
		ui.applyChat(e)
	case models.PresenceEvent:
		if e.Self {
			ui.state.append(consoleKey, FormatPresence(e))
			ui.state.close(e.RoomJID)
			break
		}
		ui.state.append(e.RoomJID, FormatPresence(e))
	case models.PresenceErrorEvent:
		line := FormatPresenceError(e)
		ui.state.append(consoleKey, "-!- "+line)
		ui.state.close(e.RoomJID)
		ui.ShowError("Join failed", line, "OK", 0, nil)
	case models.MessageEvent:
		ui.state.append(e.RoomJID, FormatMessage(e, timeNow()))
	case models.LoginEvent:
		ui.Login.Show(e.PresetJID)
		return
	}
	ui.refresh()
}

func (ui *UI) applyChat(e models.ChatEvent) {
	switch e.Kind {
	case models.ChatChatstate:
		if e.Chatstate != nil {
			ui.Chat.hint = FormatChatstate(*e.Chatstate)
		}
		return
	case models.ChatInvite:
		if e.Invite != nil {
			ui.ShowInvite(*e.Invite)
		}
	}
	if line, ok := FormatChat(e); ok {
		ui.state.append(consoleKey, line)
	}
}

func (ui *UI) submit(text string) {
	current := ui.state.current
	cmd, err := ParseCommand(text)
	if err != nil {
		ui.state.append(current, "-!- "+err.Error())
		ui.refresh()
		return
	}
	if cmd.Name == "quit" {
		ui.quit()
		return
	}
	go func() {
		res, err := ui.commander.Execute(ui.ctx, current, cmd)
		ui.App.QueueUpdateDraw(func() {
			ui.applyResult(current, res, err)
		})
	}()
}

func (ui *UI) applyResult(current string, res Result, err error) {
	switch {
	case err != nil:
		ui.state.append(current, "-!- "+err.Error())
	case res.Close:
		ui.state.close(res.Buffer)
	default:
		if len(res.Lines) > 0 {
			ui.state.append(res.Buffer, res.Lines...)
		}
		if res.Focus {
			ui.state.open(res.Buffer)
			ui.state.selectBuffer(res.Buffer)
		}
	}
	ui.refresh()
}

func (ui *UI) selectBuffer(key string) {
	if ui.state.selectBuffer(key) {
		ui.Chat.hint = ""
		ui.refresh()
	}
}

// cycle moves the selection by delta buffers, wrapping around.
func (ui *UI) cycle(delta int) {
	keys := ui.state.keys()
	idx := ui.state.index(ui.state.current)
	next := (idx + delta + len(keys)) % len(keys)
	ui.selectBuffer(keys[next])
}

// bufferName is the disco name for rooms and the local part for direct
// chats. Private chats inside a room return "" to be shown as @nick.
func (ui *UI) bufferName(key string) string {
	if key == consoleKey {
		return ""
	}
	if snap, ok := ui.cfg.Client.Room(key); ok {
		return snap.DisplayName()
	}
	if protocol.Resource(key) == "" {
		return ""
	}
	if _, ok := ui.cfg.Client.Room(protocol.Bare(key)); ok {
		return ""
	}
	return protocol.Node(key)
}

func (ui *UI) refresh() {
	ui.Chat.refreshRooms()
	ui.Chat.refreshChat()
	ui.Chat.refreshOccupants()
	ui.Chat.refreshStatus()
}
