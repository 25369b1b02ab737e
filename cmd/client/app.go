package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"tavern/internal/client"
	"tavern/internal/config"
	"tavern/internal/protocol"
	"tavern/internal/relay"
	"tavern/internal/storage"
	"tavern/internal/utils"
)

const writeQueueSize = 256

// App owns everything a session needs besides the view.
type App struct {
	Config *config.Config
	Client *client.Client
	DB     *storage.SessionDB
	Relay  *relay.Relay

	log    *slog.Logger
	remote *utils.RemoteLogger
	nc     *nats.Conn
}

// newApp wires logging, history and the optional relay around a client.
// console receives log output in addition to the remote sink; pass nil
// when the terminal belongs to the view.
func newApp(cfg *config.Config, console io.Writer) (*App, error) {
	app := &App{Config: cfg}

	var sinks []io.Writer
	if console != nil {
		sinks = append(sinks, console)
	}
	if cfg.LogPort > 0 {
		rl, err := utils.NewRemoteLogger(cfg.LogPort)
		if err != nil {
			return nil, err
		}
		app.remote = rl
		sinks = append(sinks, rl)
	}
	app.log = utils.NewLogger(cfg.Debug, sinks...)
	app.Client = client.New(cfg.ClientOptions(), app.log)

	path := cfg.HistoryDB
	if path == "" {
		account := protocol.Node(cfg.JID)
		if account == "" {
			account = cfg.Nick
		}
		p, err := storage.DefaultPath(account)
		if err != nil {
			app.close()
			return nil, err
		}
		path = p
	}
	db, err := storage.InitSessionDB(path, writeQueueSize, app.log)
	if err != nil {
		app.close()
		return nil, err
	}
	app.DB = db
	db.History.Attach(app.Client.Bus)
	db.Seen.Attach(app.Client.Bus)

	if cfg.NATSURL != "" {
		nc, err := relay.Dial(cfg.NATSURL)
		if err != nil {
			app.close()
			return nil, err
		}
		app.nc = nc
		app.Relay = relay.New(nc, cfg.NATSSubjectPrefix, protocol.Bare(cfg.JID), app.log)
		app.Relay.Attach(app.Client.Bus)
	}
	return app, nil
}

// Shutdown leaves every room and releases the database, the relay and
// the log listener.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Client.Disconnect(ctx)
	if errors.Is(err, client.ErrNotConnected) {
		err = nil
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.Relay != nil {
		a.Relay.Detach()
	}
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.log.Warn("nats drain failed", "err", err)
		}
		a.nc = nil
	}
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	if a.remote != nil {
		_ = a.remote.Close()
		a.remote = nil
	}
}

// exportRoom writes a room's stored history to w and reports how many
// bytes were written.
func (a *App) exportRoom(ctx context.Context, room string, since time.Time, limit int, w io.Writer) (int, error) {
	payload, _, err := a.DB.Store.ExportRoom(ctx, protocol.Bare(room), since, limit)
	if err != nil {
		return 0, err
	}
	if len(payload) == 0 {
		return 0, nil
	}
	return w.Write(payload)
}
