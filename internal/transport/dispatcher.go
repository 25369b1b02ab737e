package transport

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"tavern/internal/protocol"
)

// Matcher selects stanzas for a handler. Empty fields match anything.
// From matches the full sender address, or its bare form when From has
// no resource.
type Matcher struct {
	Kind      string
	Namespace string
	Type      string
	ID        string
	From      string
}

func (m Matcher) Match(st protocol.Stanza) bool {
	if m.Kind != "" && m.Kind != st.Kind() {
		return false
	}
	if m.Type != "" && m.Type != st.StanzaType() {
		return false
	}
	if m.ID != "" && m.ID != st.StanzaID() {
		return false
	}
	if m.Namespace != "" && !slices.Contains(st.Namespaces(), m.Namespace) {
		return false
	}
	if m.From != "" {
		from := st.StanzaFrom()
		if protocol.Resource(m.From) == "" {
			from = protocol.Bare(from)
		}
		if from != m.From {
			return false
		}
	}
	return true
}

// HandlerFunc handles one stanza. Returning keep=false unregisters the
// handler after this call.
type HandlerFunc func(ctx context.Context, st protocol.Stanza) (keep bool, err error)

type HandlerRef uint64

type registration struct {
	ref     HandlerRef
	name    string
	matcher Matcher
	handler HandlerFunc
}

// Dispatcher delivers inbound stanzas to registered handlers, one stanza
// at a time. Handlers are independent: an error or panic in one is logged
// and does not stop the others or unregister it.
type Dispatcher struct {
	mu       sync.Mutex
	next     HandlerRef
	handlers []registration
	log      *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{log: log}
}

// AddHandler registers h under a name used in logs.
func (d *Dispatcher) AddHandler(name string, m Matcher, h HandlerFunc) HandlerRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.handlers = append(d.handlers, registration{ref: d.next, name: name, matcher: m, handler: h})
	return d.next
}

func (d *Dispatcher) DeleteHandler(ref HandlerRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = slices.DeleteFunc(d.handlers, func(r registration) bool { return r.ref == ref })
}

// Reset drops every handler.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = nil
}

func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

// Dispatch runs every matching handler in registration order and returns
// how many ran. Handlers added while dispatching see the next stanza.
func (d *Dispatcher) Dispatch(ctx context.Context, st protocol.Stanza) int {
	d.mu.Lock()
	snapshot := slices.Clone(d.handlers)
	d.mu.Unlock()

	ran := 0
	for _, r := range snapshot {
		if !r.matcher.Match(st) {
			continue
		}
		ran++
		if !d.run(ctx, r, st) {
			d.DeleteHandler(r.ref)
		}
	}
	return ran
}

func (d *Dispatcher) run(ctx context.Context, r registration, st protocol.Stanza) (keep bool) {
	keep = true
	defer func() {
		if p := recover(); p != nil {
			d.log.Error("handler panicked", "handler", r.name, "kind", st.Kind(), "from", st.StanzaFrom(), "panic", fmt.Sprint(p))
			keep = true
		}
	}()
	k, err := r.handler(ctx, st)
	if err != nil {
		d.log.Warn("handler failed", "handler", r.name, "kind", st.Kind(), "from", st.StanzaFrom(), "err", err)
	}
	return k
}
