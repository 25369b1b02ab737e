package transport

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"mellium.im/sasl"
	"mellium.im/xmlstream"
	"mellium.im/xmpp"
	"mellium.im/xmpp/dial"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"

	"tavern/internal/protocol"
)

const dialTimeout = 30 * time.Second

type Config struct {
	JID      string
	Password string
	// Service overrides SRV lookup with an explicit host:port.
	Service string
	TLS     *tls.Config
}

// Conn is an authenticated, bound client stream.
type Conn struct {
	mu      sync.RWMutex
	session *xmpp.Session
	netConn net.Conn
	log     *slog.Logger
}

type replyKey struct{}

// Dial connects, negotiates TLS and SASL, and binds a resource. Failures
// before the stream is up wrap ErrConnFail; negotiation failures wrap
// ErrAuthFail.
func Dial(ctx context.Context, cfg Config, log *slog.Logger) (*Conn, error) {
	if log == nil {
		log = slog.Default()
	}
	addr, err := jid.Parse(cfg.JID)
	if err != nil {
		return nil, protocol.ErrBadAddress.WithDetails(err.Error())
	}
	if addr.Localpart() == "" || cfg.Password == "" {
		return nil, ErrAnonymousUnsupported
	}

	var netConn net.Conn
	if cfg.Service != "" {
		d := net.Dialer{Timeout: dialTimeout}
		netConn, err = d.DialContext(ctx, "tcp", cfg.Service)
	} else {
		netConn, err = dial.Client(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, ErrConnFail.WithDetails(err.Error())
	}

	tlsConfig := cfg.TLS
	if tlsConfig == nil {
		tlsConfig = &tls.Config{
			ServerName: addr.Domainpart(),
			MinVersion: tls.VersionTLS12,
		}
	}

	negotiator := xmpp.NewNegotiator(func(_ *xmpp.Session, _ *xmpp.StreamConfig) xmpp.StreamConfig {
		return xmpp.StreamConfig{
			Features: []xmpp.StreamFeature{
				xmpp.StartTLS(tlsConfig),
				xmpp.SASL("", cfg.Password, sasl.ScramSha256Plus, sasl.ScramSha256, sasl.ScramSha1Plus, sasl.ScramSha1, sasl.Plain),
				xmpp.BindResource(),
			},
		}
	})

	session, err := xmpp.NewSession(ctx, addr.Domain(), addr, netConn, 0, negotiator)
	if err != nil {
		_ = netConn.Close()
		return nil, ErrAuthFail.WithDetails(err.Error())
	}
	log.Info("session negotiated", "jid", session.LocalAddr().String())

	return &Conn{session: session, netConn: netConn, log: log}, nil
}

// LocalAddr is the full address bound by the server.
func (c *Conn) LocalAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.LocalAddr().String()
}

// Encode writes v to the stream. Inside the dispatch of an IQ get or set
// it writes through the request's encoder so the stream sees the reply.
func (c *Conn) Encode(ctx context.Context, v any) error {
	if c.log.Enabled(ctx, slog.LevelDebug) {
		if raw, err := xml.Marshal(v); err == nil {
			c.log.Debug("SENT", "xml", string(raw))
		}
	}
	if enc, ok := ctx.Value(replyKey{}).(xmlstream.Encoder); ok {
		return enc.Encode(v)
	}
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return ErrNotConnected
	}
	return session.Encode(ctx, v)
}

// Serve decodes inbound stanzas and hands them to d until the stream ends
// or ctx is cancelled.
func (c *Conn) Serve(ctx context.Context, d *Dispatcher) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	err := session.Serve(xmpp.HandlerFunc(func(t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
		dec := xml.NewTokenDecoder(xmlstream.MultiReader(xmlstream.Token(*start), t))
		st, err := protocol.Decode(dec)
		if err != nil {
			c.log.Debug("skipping element", "name", start.Name.Local, "err", err)
			return nil
		}
		c.log.Debug("RECV", "kind", st.Kind(), "type", st.StanzaType(), "from", st.StanzaFrom(), "id", st.StanzaID())

		hctx := ctx
		if st.Kind() == protocol.KindIQ && (st.StanzaType() == string(stanza.GetIQ) || st.StanzaType() == string(stanza.SetIQ)) {
			hctx = context.WithValue(ctx, replyKey{}, xmlstream.Encoder(t))
		}
		d.Dispatch(hctx, st)
		return nil
	}))
	if err == nil {
		return nil
	}
	c.mu.RLock()
	closed := c.session == nil
	c.mu.RUnlock()
	if closed || ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Close sends unavailable presence, ends the stream and closes the
// socket. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	session, netConn := c.session, c.netConn
	c.session, c.netConn = nil, nil
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = session.Encode(ctx, stanza.Presence{Type: stanza.UnavailablePresence})
	err := session.Close()
	if cerr := netConn.Close(); err == nil {
		err = cerr
	}
	return err
}
