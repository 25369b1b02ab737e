// Package client is the chat core: the session state, the action layer
// that sends requests and the event layer that turns inbound stanzas into
// bus notifications.
package client

import (
	"context"
	"log/slog"
	"sync"

	"tavern/internal/transport"
)

// Conn is a live connection the client can serve and close.
type Conn interface {
	Transport
	Serve(ctx context.Context, d *transport.Dispatcher) error
	Close() error
}

// Dialer opens a Conn. DialXMPP is the production dialer.
type Dialer func(ctx context.Context, cfg transport.Config, log *slog.Logger) (Conn, error)

func DialXMPP(ctx context.Context, cfg transport.Config, log *slog.Logger) (Conn, error) {
	c, err := transport.Dial(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type Client struct {
	Session    *Session
	Action     *Action
	Events     *Events
	Bus        *Bus
	Dispatcher *transport.Dispatcher

	log  *slog.Logger
	dial Dialer
	conn *connHolder

	mu      sync.Mutex
	running bool
}

func New(opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	session := NewSession(nil, opts)
	holder := &connHolder{}
	bus := NewBus()
	action := NewAction(session, holder, log.With("component", "action"))
	return &Client{
		Session:    session,
		Action:     action,
		Events:     NewEvents(session, action, bus, log.With("component", "events")),
		Bus:        bus,
		Dispatcher: transport.NewDispatcher(log.With("component", "dispatcher")),
		log:        log,
		dial:       DialXMPP,
		conn:       holder,
	}
}

// SetDialer replaces the dialer used by Connect.
func (cli *Client) SetDialer(d Dialer) {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	cli.dial = d
}

// connHolder is the Transport the action layer sends through. It follows
// whichever connection is current and fails while there is none.
type connHolder struct {
	mu   sync.RWMutex
	conn Conn
}

func (h *connHolder) set(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conn = c
}

func (h *connHolder) get() Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conn
}

func (h *connHolder) Encode(ctx context.Context, v any) error {
	c := h.get()
	if c == nil {
		return ErrNotConnected
	}
	return c.Encode(ctx, v)
}

func (h *connHolder) LocalAddr() string {
	c := h.get()
	if c == nil {
		return ""
	}
	return c.LocalAddr()
}
