package client

import (
	"context"
	"errors"

	"tavern/internal/models"
	"tavern/internal/transport"
)

// Connect logs in with creds and serves the connection until it closes.
// Without usable credentials it publishes a LOGIN event and returns
// ErrCredentialsRequired. Connect blocks; run it on its own goroutine.
func (cli *Client) Connect(ctx context.Context, creds Credentials) error {
	mode := loginModeFor(creds)
	if mode == loginPrompt {
		cli.Events.Login(creds.JID)
		return ErrCredentialsRequired
	}
	if err := validateCredentials(creds, mode); err != nil {
		return err
	}

	cli.mu.Lock()
	if cli.running {
		cli.mu.Unlock()
		return ErrAlreadyConnected
	}
	cli.running = true
	dial := cli.dial
	cli.mu.Unlock()
	defer func() {
		cli.mu.Lock()
		cli.running = false
		cli.mu.Unlock()
	}()

	userJID := creds.JID
	if mode == loginAnonymous {
		userJID = ""
	}
	cli.Session.reset(models.NewUser(userJID, nickFor(creds)))
	cli.Dispatcher.Reset()
	cli.Events.Register(cli.Dispatcher)

	if err := cli.Events.SetStatus(ctx, models.StatusConnecting); err != nil {
		return err
	}
	conn, err := dial(ctx, transport.Config{
		JID:      creds.JID,
		Password: creds.Password,
		Service:  creds.Service,
	}, cli.log.With("component", "transport"))
	if err != nil {
		failed := models.StatusConnFail
		if errors.Is(err, transport.ErrAuthFail) {
			failed = models.StatusAuthFail
		}
		cli.setStatus(ctx, failed)
		cli.setStatus(ctx, models.StatusDisconnected)
		return err
	}

	cli.conn.set(conn)
	defer cli.conn.set(nil)
	cli.setStatus(ctx, models.StatusConnected)

	err = conn.Serve(ctx, cli.Dispatcher)
	if cerr := conn.Close(); cerr != nil {
		cli.log.Debug("close after serve", "err", cerr)
	}
	if err != nil {
		cli.log.Error("connection lost", "err", err)
		cli.setStatus(ctx, models.StatusConnFail)
	}
	cli.setStatus(ctx, models.StatusDisconnected)
	return err
}

// Disconnect leaves every tracked room and closes the connection. The
// DISCONNECTED status follows once Connect's serve loop has returned.
func (cli *Client) Disconnect(ctx context.Context) error {
	conn := cli.conn.get()
	if conn == nil {
		return ErrNotConnected
	}
	for _, room := range cli.Session.RoomJIDs() {
		if err := cli.Action.LeaveRoom(ctx, room); err != nil {
			cli.log.Warn("leave on disconnect failed", "room", room, "err", err)
		}
	}
	cli.setStatus(ctx, models.StatusDisconnecting)
	return conn.Close()
}

// Login publishes a LOGIN event so the view can ask for credentials.
func (cli *Client) Login(presetJID string) {
	cli.Events.Login(presetJID)
}

func (cli *Client) setStatus(ctx context.Context, status models.Status) {
	if err := cli.Events.SetStatus(ctx, status); err != nil {
		cli.log.Debug("status change skipped", "err", err)
	}
}
