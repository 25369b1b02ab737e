package client

import (
	"context"
	"log/slog"
	"strings"

	"tavern/internal/models"
	"tavern/internal/protocol"
	"tavern/internal/utils"
)

// Transport sends stanzas on the current connection.
type Transport interface {
	Encode(ctx context.Context, v any) error
	LocalAddr() string
}

// Action builds and sends outbound stanzas. Methods only send; replies
// come back through the event layer.
type Action struct {
	session *Session
	conn    Transport
	log     *slog.Logger
}

func NewAction(session *Session, conn Transport, log *slog.Logger) *Action {
	if log == nil {
		log = slog.Default()
	}
	return &Action{session: session, conn: conn, log: log}
}

func (a *Action) send(ctx context.Context, v any) error {
	return a.conn.Encode(ctx, v)
}

// Version answers a software version request with the configured client
// name and version.
func (a *Action) Version(ctx context.Context, req *protocol.IQ) error {
	opts := a.session.Options()
	reply, err := protocol.VersionReply(req, opts.ClientName, opts.ClientVersion, opts.ClientOS)
	if err != nil {
		return err
	}
	return a.send(ctx, reply)
}

func (a *Action) Roster(ctx context.Context) error {
	return a.send(ctx, protocol.RosterRequest())
}

// Presence broadcasts our own presence. The zero PresenceAttrs announces
// plain availability.
func (a *Action) Presence(ctx context.Context, attrs protocol.PresenceAttrs) error {
	p, err := protocol.PresenceStanza(attrs)
	if err != nil {
		return err
	}
	return a.send(ctx, p)
}

// Services asks the server for its disco items.
func (a *Action) Services(ctx context.Context) error {
	return a.send(ctx, protocol.ServicesRequest())
}

// Autojoin requests the bookmarks when bookmark autojoin is on, otherwise
// joins each configured room in order. A failing room does not stop the
// rest.
func (a *Action) Autojoin(ctx context.Context) error {
	aj := a.session.Options().Autojoin
	if aj.Bookmarks {
		return a.send(ctx, protocol.BookmarksRequest())
	}
	for _, room := range aj.Rooms {
		if err := a.JoinRoom(ctx, room, ""); err != nil {
			a.log.Warn("autojoin failed", "room", room, "err", err)
		}
	}
	return nil
}

func (a *Action) ResetIgnoreList(ctx context.Context) error {
	iq, err := protocol.ResetIgnoreList(a.session.UserJID(), models.IgnoreListName)
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}

func (a *Action) RemoveIgnoreList(ctx context.Context) error {
	iq, err := protocol.RemoveIgnoreList(a.session.UserJID(), models.IgnoreListName)
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}

func (a *Action) GetIgnoreList(ctx context.Context) error {
	iq, err := protocol.GetIgnoreList(a.session.UserJID(), models.IgnoreListName)
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}

func (a *Action) SetIgnoreListActive(ctx context.Context) error {
	iq, err := protocol.SetIgnoreListActive(a.session.UserJID(), models.IgnoreListName)
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}

// AdoptIdentity gives an anonymous user the address the server bound for
// this connection. It reports whether the address changed.
func (a *Action) AdoptIdentity() bool {
	adopted := false
	a.session.write(func() {
		if !a.session.user.IsAnonymous() {
			return
		}
		a.session.user.JID = a.conn.LocalAddr()
		adopted = a.session.user.JID != ""
	})
	if adopted {
		a.log.Debug("adopted bound address", "jid", a.session.UserJID())
	}
	return adopted
}

// JoinRoom fires a disco#info request at the room and then enters it.
// The join does not wait for the disco answer.
func (a *Action) JoinRoom(ctx context.Context, room, password string) error {
	if err := utils.ValidateRoomAddress(room); err != nil {
		return err
	}
	room = protocol.Bare(room)
	if err := a.Disco(ctx, room); err != nil {
		a.log.Warn("disco request failed", "room", room, "err", err)
	}
	p, err := protocol.JoinPresence(room, a.session.UserNick(), password)
	if err != nil {
		return err
	}
	return a.send(ctx, p)
}

// LeaveRoom sends unavailable presence to our occupant address in room.
// The room stays tracked until the server echoes the presence back.
func (a *Action) LeaveRoom(ctx context.Context, room string) error {
	room = protocol.Bare(room)
	var (
		nick    string
		tracked bool
	)
	a.session.read(func() {
		r := a.session.room(room)
		if r == nil {
			return
		}
		tracked = true
		nick = a.session.currentUser(r).Nick
	})
	if !tracked {
		return ErrRoomNotTracked.WithDetails(room)
	}
	p, err := protocol.LeavePresence(room, nick)
	if err != nil {
		return err
	}
	return a.send(ctx, p)
}

func (a *Action) Disco(ctx context.Context, room string) error {
	iq, err := protocol.DiscoInfoRequest(a.session.UserJID(), room)
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}

// SendMessage sends text to a room ("groupchat") or an occupant ("chat").
// Text that is empty after trimming is not sent and reports false.
func (a *Action) SendMessage(ctx context.Context, to, text, kind string) (bool, error) {
	if kind != models.MessageTypeGroupchat && kind != models.MessageTypeChat {
		return false, ErrInvalidMessageKind.WithDetails(kind)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	msg, err := protocol.ChatMessage(to, text, kind)
	if err != nil {
		return false, err
	}
	if err := a.send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// UserAction kicks or bans the occupant userJID from room. Any other
// action is rejected with false and nothing is sent.
func (a *Action) UserAction(ctx context.Context, room, userJID string, action models.PresenceAction, reason string) (bool, error) {
	nick := protocol.Resource(userJID)
	room = protocol.Bare(room)
	var (
		iq  protocol.OutIQ
		err error
	)
	switch action {
	case models.ActionKick:
		iq, err = protocol.AdminItemRequest(protocol.IDKick, a.session.UserJID(), room, nick, string(models.RoleNone), "", reason)
	case models.ActionBan:
		iq, err = protocol.AdminItemRequest(protocol.IDBan, a.session.UserJID(), room, nick, "", string(models.AffiliationOutcast), reason)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := a.send(ctx, iq); err != nil {
		return false, err
	}
	return true, nil
}

// SetSubject changes the room topic. An empty subject clears it.
func (a *Action) SetSubject(ctx context.Context, room, subject string) error {
	room = protocol.Bare(room)
	msg, err := protocol.SubjectMessage(room, subject)
	if err != nil {
		return err
	}
	return a.send(ctx, msg)
}

// IgnoreUnignore flips userJID on the local ignore list and uploads the
// result.
func (a *Action) IgnoreUnignore(ctx context.Context, userJID string) error {
	a.session.write(func() {
		a.session.user.TogglePrivacyList(models.IgnoreListName, userJID)
	})
	return a.UpdatePrivacyList(ctx)
}

// UpdatePrivacyList replaces the server-side ignore list with the local
// one.
func (a *Action) UpdatePrivacyList(ctx context.Context) error {
	iq, err := protocol.UpdateIgnoreList(a.session.UserJID(), models.IgnoreListName, a.session.IgnoreList())
	if err != nil {
		return err
	}
	return a.send(ctx, iq)
}
