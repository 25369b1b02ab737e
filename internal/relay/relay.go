// Package relay republishes client events to NATS so other processes can
// follow a chat session.
package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"tavern/internal/client"
	"tavern/internal/models"
	"tavern/internal/observer"
	"tavern/internal/utils"
)

const DefaultPrefix = "tavern"

var ErrNoURL = utils.ConfigError("nats url is empty")

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Envelope is the JSON document published for every event.
type Envelope struct {
	Key     string       `json:"key"`
	Account string       `json:"account,omitempty"`
	Sent    time.Time    `json:"sent"`
	Event   models.Event `json:"event"`
}

type Relay struct {
	pub     Publisher
	prefix  string
	account string
	log     *slog.Logger
	now     func() time.Time

	bus     *client.Bus
	handles []observer.Handle
}

func New(pub Publisher, prefix, account string, log *slog.Logger) *Relay {
	prefix = strings.Trim(prefix, ". ")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Relay{
		pub:     pub,
		prefix:  prefix,
		account: account,
		log:     log,
		now:     time.Now,
	}
}

// Dial connects to a NATS server.
func Dial(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	nc, err := nats.Connect(url,
		nats.Name("tavern"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns <prefix>.<key>, for example tavern.presence.
func (r *Relay) Subject(key models.Key) string {
	return r.prefix + "." + key.String()
}

// Attach subscribes the relay to every event key of bus.
func (r *Relay) Attach(bus *client.Bus) {
	r.Detach()
	r.bus = bus
	r.handles = client.SubscribeAll(bus, r.forward)
}

func (r *Relay) Detach() {
	if r.bus == nil {
		return
	}
	client.Unsubscribe(r.bus, r.handles...)
	r.bus, r.handles = nil, nil
}

func (r *Relay) forward(ev models.Event) {
	key := ev.Key()
	data, err := json.Marshal(Envelope{
		Key:     key.String(),
		Account: r.account,
		Sent:    r.now().UTC(),
		Event:   ev,
	})
	if err != nil {
		r.log.Error("relay encode failed", "key", key.String(), "err", err)
		return
	}
	if err := r.pub.Publish(r.Subject(key), data); err != nil {
		r.log.Warn("relay publish failed", "subject", r.Subject(key), "err", err)
	}
}
