package client

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"mellium.im/xmpp/stanza"

	"tavern/internal/models"
	"tavern/internal/protocol"
	"tavern/internal/transport"
	"tavern/internal/utils"
)

const (
	testDomain = "example.org"
	testRoom   = "lobby@muc.example.org"
	boundAddr  = "guest-1f2e@example.org/tavern"
)

// fakeConn records everything the action layer sends.
type fakeConn struct {
	mu     sync.Mutex
	addr   string
	sent   []any
	serve  func(ctx context.Context, d *transport.Dispatcher) error
	closed chan struct{}
	once   sync.Once
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: addr, closed: make(chan struct{})}
}

func (f *fakeConn) Encode(_ context.Context, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeConn) LocalAddr() string { return f.addr }

func (f *fakeConn) Serve(ctx context.Context, d *transport.Dispatcher) error {
	if f.serve != nil {
		return f.serve(ctx, d)
	}
	select {
	case <-f.closed:
	case <-ctx.Done():
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// sentLog describes the sent stanzas in a compact form.
func (f *fakeConn) sentLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, v := range f.sent {
		out = append(out, describe(v))
	}
	return out
}

func (f *fakeConn) last() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func describe(v any) string {
	switch s := v.(type) {
	case protocol.OutIQ:
		switch p := s.Payload.(type) {
		case protocol.RosterQuery:
			return "iq roster"
		case protocol.DiscoItemsQuery:
			return "iq disco#items"
		case protocol.DiscoInfoQuery:
			return "iq disco#info " + s.To.String()
		case protocol.PrivateQuery:
			return "iq bookmarks"
		case protocol.VersionQuery:
			return "iq version " + s.ID
		case protocol.PrivacyQuery:
			return "iq privacy " + s.ID
		case protocol.MUCAdminQuery:
			return fmt.Sprintf("iq admin %s %s", s.ID, p.Item.Nick)
		}
		return fmt.Sprintf("iq %T", s.Payload)
	case protocol.OutPresence:
		switch {
		case s.MUC != nil:
			return "presence join " + s.To.String()
		case s.Type == stanza.UnavailablePresence:
			return "presence leave " + s.To.String()
		}
		return "presence"
	case protocol.OutMessage:
		if s.Subject != nil {
			return "message subject " + s.To.String()
		}
		return fmt.Sprintf("message %s %s %s", s.Type, s.To.String(), s.Body)
	}
	return fmt.Sprintf("%T", v)
}

type eventLog struct {
	mu     sync.Mutex
	events []models.Event
}

func (l *eventLog) add(ev models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Event(nil), l.events...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func eventsOf[E models.Event](l *eventLog) []E {
	var out []E
	for _, ev := range l.all() {
		if e, ok := ev.(E); ok {
			out = append(out, e)
		}
	}
	return out
}

func statuses(l *eventLog) []models.Status {
	var out []models.Status
	for _, ev := range eventsOf[models.ChatEvent](l) {
		if ev.Kind == models.ChatConnection {
			out = append(out, ev.Status)
		}
	}
	return out
}

type harness struct {
	cli    *Client
	conn   *fakeConn
	events *eventLog
}

// newHarness wires a client to a fake connection without going through
// Connect. user may be nil for an authenticated "me@example.org".
func newHarness(t *testing.T, user *models.User, opts Options) *harness {
	t.Helper()
	if user == nil {
		user = models.NewUser("me@example.org/tavern", "me")
	}
	cli := New(opts, utils.NewLogger(false))
	cli.Session.reset(user)
	conn := newFakeConn(boundAddr)
	cli.conn.set(conn)
	cli.Events.Register(cli.Dispatcher)
	events := &eventLog{}
	SubscribeAll(cli.Bus, events.add)
	return &harness{cli: cli, conn: conn, events: events}
}

func (h *harness) feed(t *testing.T, raw string) {
	t.Helper()
	st, err := protocol.Parse([]byte(raw))
	require.NoError(t, err)
	h.cli.Dispatcher.Dispatch(context.Background(), st)
}

func mucPresence(from, typ, affiliation, role string, extra string) string {
	typeAttr := ""
	if typ != "" {
		typeAttr = fmt.Sprintf(` type="%s"`, typ)
	}
	return fmt.Sprintf(`<presence from="%s"%s><x xmlns="http://jabber.org/protocol/muc#user"><item affiliation="%s" role="%s"/>%s</x></presence>`,
		from, typeAttr, affiliation, role, extra)
}
