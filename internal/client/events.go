package client

import (
	"context"
	"log/slog"
	"sync"

	"tavern/internal/models"
	"tavern/internal/protocol"
	"tavern/internal/transport"
)

// Events turns connection status changes and inbound stanzas into
// session updates and bus notifications.
type Events struct {
	session *Session
	action  *Action
	bus     *Bus
	log     *slog.Logger

	statusMu sync.Mutex
}

func NewEvents(session *Session, action *Action, bus *Bus, log *slog.Logger) *Events {
	if log == nil {
		log = slog.Default()
	}
	return &Events{session: session, action: action, bus: bus, log: log}
}

// Register installs the stanza handlers on d. The two privacy list
// handlers are one-shot.
func (ev *Events) Register(d *transport.Dispatcher) {
	d.AddHandler("version", transport.Matcher{Kind: protocol.KindIQ, Namespace: protocol.NSVersion, Type: "get"}, ev.handleVersion)
	d.AddHandler("presence", transport.Matcher{Kind: protocol.KindPresence}, ev.handlePresence)
	d.AddHandler("message", transport.Matcher{Kind: protocol.KindMessage}, ev.handleMessage)
	d.AddHandler("bookmarks", transport.Matcher{Kind: protocol.KindIQ, Namespace: protocol.NSPrivate, Type: "result"}, ev.handleBookmarks)
	d.AddHandler("disco", transport.Matcher{Kind: protocol.KindIQ, Namespace: protocol.NSDiscoInfo, Type: "result"}, ev.handleDisco)
	d.AddHandler("privacy-list", transport.Matcher{Kind: protocol.KindIQ, Namespace: protocol.NSPrivacy, Type: "result"}, ev.handlePrivacyList)
	d.AddHandler("privacy-list-error", transport.Matcher{Kind: protocol.KindIQ, ID: protocol.IDGetIgnoreList, Type: "error"}, ev.handlePrivacyListError)
}

// SetStatus moves the connection to status, runs the effects of entering
// it and publishes a connection CHAT event. A transition the table does
// not allow changes nothing and returns ErrInvalidTransition.
func (ev *Events) SetStatus(ctx context.Context, status models.Status) error {
	ev.statusMu.Lock()
	from := ev.session.Status()
	if !canTransition(from, status) {
		ev.statusMu.Unlock()
		return ErrInvalidTransition.WithDetailsf("%s -> %s", from, status)
	}
	ev.session.setStatus(status)
	ev.log.Info("connection status", "from", from.String(), "to", status.String())
	for _, e := range statusEffects[status] {
		if err := e.run(ctx, ev); err != nil {
			ev.log.Warn("status effect failed", "effect", e.name, "status", status.String(), "err", err)
		}
	}
	ev.statusMu.Unlock()

	publish(ev.bus, models.ChatEvent{
		Kind:   models.ChatConnection,
		Type:   string(models.ChatConnection),
		Status: status,
	})
	return nil
}

// Login asks the view for credentials, prefilling presetJID if given.
func (ev *Events) Login(presetJID string) {
	publish(ev.bus, models.LoginEvent{PresetJID: presetJID})
}
