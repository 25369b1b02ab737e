package client

import (
	"context"

	"tavern/internal/models"
	"tavern/internal/protocol"
)

// handleMessage routes a message to invite, room, admin or server
// handling. Messages matching none of them are dropped.
func (ev *Events) handleMessage(_ context.Context, st protocol.Stanza) (bool, error) {
	m, ok := st.(*protocol.Message)
	if !ok {
		return true, nil
	}
	if m.Type == "" || m.Type == "normal" {
		if inv := invite(m); inv != nil {
			publish(ev.bus, models.ChatEvent{Kind: models.ChatInvite, Type: string(models.ChatInvite), Invite: inv})
			return true, nil
		}
	}

	fromServer := protocol.IsDomain(m.From)
	switch {
	case !fromServer && (m.Type == "groupchat" || m.Type == "chat" || m.Type == "error"):
		ev.roomMessage(m)
	case fromServer && m.To == "":
		publish(ev.bus, models.ChatEvent{
			Kind:    models.ChatAdmin,
			Type:    orDefault(m.Type, "message"),
			Message: m.BodyText(),
		})
	case fromServer:
		publish(ev.bus, models.ChatEvent{
			Kind:    models.ChatServer,
			Type:    orDefault(m.Type, "message"),
			Subject: m.SubjectText(),
			Message: m.BodyText(),
		})
	default:
		ev.log.Debug("unhandled message", "from", m.From, "type", m.Type)
	}
	return true, nil
}

// roomMessage classifies a room or private message and publishes it as a
// MESSAGE event.
func (ev *Events) roomMessage(m *protocol.Message) {
	var (
		roomJID string
		msg     models.Message
	)
	switch {
	case m.HasSubject():
		roomJID = protocol.Bare(protocol.UnescapeJID(m.From))
		msg = models.Message{
			Name: protocol.Node(roomJID),
			Body: m.SubjectText(),
			Type: models.MessageTypeSubject,
		}
		ev.session.write(func() {
			if r := ev.session.room(roomJID); r != nil {
				r.Subject = msg.Body
			}
		})
	case m.Type == "error":
		text, ok := m.Error.Text()
		if m.Error == nil || m.Error.Code != "500" || !ok {
			ev.log.Debug("unhandled error message", "from", m.From, "condition", m.Error.Condition())
			return
		}
		roomJID = m.From
		msg = models.Message{Body: text, Type: models.MessageTypeInfo}
	case m.HasBody() && m.Type == "chat":
		roomJID = protocol.UnescapeJID(m.From)
		noConference := !ev.session.HasRoom(protocol.Bare(roomJID))
		name := protocol.Resource(roomJID)
		if noConference {
			name = protocol.Node(roomJID)
		}
		msg = models.Message{
			Name:                  name,
			Body:                  m.BodyText(),
			Type:                  models.MessageTypeChat,
			IsNoConferenceRoomJID: noConference,
		}
	case m.HasBody():
		roomJID = protocol.Bare(protocol.UnescapeJID(m.From))
		// Nicknames are resourceparts and are never escaped, so they are
		// shown as received.
		if res := protocol.Resource(m.From); res != "" {
			msg = models.Message{Name: res, Body: m.BodyText(), Type: m.Type}
		} else {
			msg = models.Message{Body: m.BodyText(), Type: models.MessageTypeInfo}
		}
	case m.Chatstate() != "":
		from := protocol.UnescapeJID(m.From)
		publish(ev.bus, models.ChatEvent{
			Kind: models.ChatChatstate,
			Type: string(models.ChatChatstate),
			Chatstate: &models.Chatstate{
				RoomJID: protocol.Bare(from),
				Name:    protocol.Resource(from),
				State:   m.Chatstate(),
			},
		})
		return
	default:
		return
	}

	out := models.MessageEvent{RoomJID: roomJID, Message: msg}
	if stamp := m.DelayStamp(); stamp != "" {
		out.Timestamp = stamp
		out.Time, _ = protocol.ParseStamp(stamp)
	}
	publish(ev.bus, out)
}

// invite extracts a mediated (muc#user) or direct (jabber:x:conference)
// room invitation.
func invite(m *protocol.Message) *models.Invite {
	if inv, password := m.MediatedInvite(); inv != nil {
		out := &models.Invite{
			RoomJID:  protocol.UnescapeJID(protocol.Bare(m.From)),
			From:     inv.From,
			Reason:   inv.Reason,
			Password: password,
		}
		if inv.Continue != nil {
			out.ContinuedThread = inv.Continue.Thread
		}
		return out
	}
	if x := m.DirectInvite(); x != nil && x.JID != "" {
		out := &models.Invite{
			RoomJID:  protocol.UnescapeJID(x.JID),
			From:     m.From,
			Reason:   x.Reason,
			Password: x.PasswordAttr,
		}
		if x.Thread != "" {
			out.ContinuedThread = x.Thread
		}
		return out
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
