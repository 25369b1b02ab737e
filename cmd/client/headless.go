package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"tavern/internal/client"
	"tavern/internal/config"
	"tavern/internal/models"
)

const shutdownTimeout = 10 * time.Second

// runHeadless connects with the configured credentials and logs every
// event until a signal arrives or the connection ends.
func runHeadless(cfg *config.Config) int {
	creds := cfg.Credentials()
	if creds.JID == "" {
		fmt.Fprintln(os.Stderr, "headless mode needs a jid in the config or TAVERN_JID")
		return 2
	}

	app, err := newApp(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	client.SubscribeAll(app.Client.Bus, func(ev models.Event) {
		logEvent(app, ev)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hs := newHeadless(app, cancel)
	go hs.connect(ctx, creds)

	shutdownCtx, forceShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer forceShutdown()
	shutdownChan := gfshutdown.GracefulShutdown(shutdownCtx, shutdownTimeout, map[string]gfshutdown.Operation{
		"client": hs.stop,
	})
	exitCode := <-shutdownChan
	return int(exitCode)
}

type headless struct {
	app      *App
	cancel   context.CancelFunc
	stopping atomic.Bool
	// interrupt wakes the shutdown handler when the connection ends on
	// its own.
	interrupt func()
}

func newHeadless(app *App, cancel context.CancelFunc) *headless {
	return &headless{
		app:    app,
		cancel: cancel,
		interrupt: func() {
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				_ = p.Signal(os.Interrupt)
			}
		},
	}
}

func (h *headless) connect(ctx context.Context, creds client.Credentials) {
	err := h.app.Client.Connect(ctx, creds)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		h.app.log.Info("connection closed")
	default:
		h.app.log.Error("connection ended", "err", err)
	}
	if !h.stopping.Load() {
		h.interrupt()
	}
}

// stop leaves every room while the connection is still up, then cancels
// the connect loop.
func (h *headless) stop(ctx context.Context) error {
	h.stopping.Store(true)
	err := h.app.Shutdown(ctx)
	h.cancel()
	return err
}

func logEvent(app *App, ev models.Event) {
	switch e := ev.(type) {
	case models.ChatEvent:
		if e.Kind == models.ChatConnection {
			app.log.Info("status", "status", e.Status)
			return
		}
		app.log.Info("chat", "kind", e.Kind, "type", e.Type, "message", e.Message)
	case models.MessageEvent:
		app.log.Info("message", "room", e.RoomJID, "from", e.Message.Name, "type", e.Message.Type, "body", e.Message.Body)
	case models.PresenceEvent:
		app.log.Info("presence", "room", e.RoomJID, "action", e.Action, "nick", e.User.Nick, "self", e.Self)
	case models.PresenceErrorEvent:
		app.log.Warn("presence error", "room", e.RoomJID, "type", e.Type, "text", e.Text)
	case models.LoginEvent:
		app.log.Warn("login required", "jid", e.PresetJID)
	}
}
