package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tavern/internal/protocol"
)

func parse(t *testing.T, raw string) protocol.Stanza {
	t.Helper()
	st, err := protocol.Parse([]byte(raw))
	require.NoError(t, err)
	return st
}

func TestMatcher(t *testing.T) {
	iq := parse(t, `<iq type="result" from="lobby@muc.example.org/x" id="a"><query xmlns="http://jabber.org/protocol/disco#info"/></iq>`)
	tests := []struct {
		name string
		m    Matcher
		want bool
	}{
		{"any", Matcher{}, true},
		{"kind", Matcher{Kind: protocol.KindIQ}, true},
		{"wrong kind", Matcher{Kind: protocol.KindMessage}, false},
		{"namespace", Matcher{Kind: protocol.KindIQ, Namespace: protocol.NSDiscoInfo}, true},
		{"wrong namespace", Matcher{Namespace: protocol.NSPrivacy}, false},
		{"type", Matcher{Type: "result"}, true},
		{"wrong type", Matcher{Type: "error"}, false},
		{"id", Matcher{ID: "a"}, true},
		{"wrong id", Matcher{ID: "b"}, false},
		{"bare from", Matcher{From: "lobby@muc.example.org"}, true},
		{"full from", Matcher{From: "lobby@muc.example.org/x"}, true},
		{"other from", Matcher{From: "lobby@muc.example.org/y"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.m.Match(iq))
		})
	}
}

func TestDispatchOneShotHandler(t *testing.T) {
	d := NewDispatcher(nil)
	calls := 0
	d.AddHandler("once", Matcher{Kind: protocol.KindIQ}, func(context.Context, protocol.Stanza) (bool, error) {
		calls++
		return false, nil
	})
	st := parse(t, `<iq type="result" id="1"/>`)

	require.Equal(t, 1, d.Dispatch(context.Background(), st))
	require.Equal(t, 0, d.Dispatch(context.Background(), st))
	require.Equal(t, 1, calls)
	require.Equal(t, 0, d.Len())
}

func TestDispatchIsolatesFailingHandlers(t *testing.T) {
	d := NewDispatcher(nil)
	var order []string
	d.AddHandler("panics", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) {
		order = append(order, "panics")
		panic("boom")
	})
	d.AddHandler("errors", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) {
		order = append(order, "errors")
		return true, errors.New("bad stanza")
	})
	d.AddHandler("ok", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) {
		order = append(order, "ok")
		return true, nil
	})

	st := parse(t, `<message from="a@b/c"><body>x</body></message>`)
	require.NotPanics(t, func() { d.Dispatch(context.Background(), st) })
	require.Equal(t, []string{"panics", "errors", "ok"}, order)

	order = nil
	d.Dispatch(context.Background(), st)
	require.Equal(t, []string{"panics", "errors", "ok"}, order)
	require.Equal(t, 3, d.Len())
}

func TestDeleteAndReset(t *testing.T) {
	d := NewDispatcher(nil)
	ref := d.AddHandler("a", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) { return true, nil })
	d.AddHandler("b", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) { return true, nil })
	d.DeleteHandler(ref)
	d.DeleteHandler(ref)
	require.Equal(t, 1, d.Len())
	d.Reset()
	require.Equal(t, 0, d.Len())
}

func TestHandlerAddedDuringDispatchWaitsForNextStanza(t *testing.T) {
	d := NewDispatcher(nil)
	late := 0
	d.AddHandler("adder", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) {
		d.AddHandler("late", Matcher{}, func(context.Context, protocol.Stanza) (bool, error) {
			late++
			return true, nil
		})
		return false, nil
	})
	st := parse(t, `<presence from="a@b/c"/>`)
	d.Dispatch(context.Background(), st)
	require.Equal(t, 0, late)
	d.Dispatch(context.Background(), st)
	require.Equal(t, 1, late)
}

func TestConnWithoutSession(t *testing.T) {
	c := &Conn{log: discardLogger()}
	require.ErrorIs(t, c.Encode(context.Background(), struct{}{}), ErrNotConnected)
	require.Equal(t, "", c.LocalAddr())
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Serve(context.Background(), NewDispatcher(nil)), ErrNotConnected)
}

func TestDialRejectsAnonymous(t *testing.T) {
	_, err := Dial(context.Background(), Config{JID: "example.org"}, discardLogger())
	require.ErrorIs(t, err, ErrAnonymousUnsupported)

	_, err = Dial(context.Background(), Config{JID: "me@example.org"}, discardLogger())
	require.ErrorIs(t, err, ErrAnonymousUnsupported)
}
