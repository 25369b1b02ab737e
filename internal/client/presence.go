package client

import (
	"context"

	"tavern/internal/models"
	"tavern/internal/protocol"
)

// MUC status codes the presence handler acts on.
const (
	statusNickAssigned = "210"
	statusBanned       = "301"
	statusNickChanged  = "303"
	statusKicked       = "307"
)

func (ev *Events) handlePresence(_ context.Context, st protocol.Stanza) (bool, error) {
	p, ok := st.(*protocol.Presence)
	if !ok {
		return true, nil
	}
	if p.MUC() == nil {
		ev.log.Debug("ignoring presence outside a room", "from", p.From, "type", p.Type)
		return true, nil
	}
	if p.Type == "error" {
		ev.roomPresenceError(p)
		return true, nil
	}
	ev.roomPresence(p)
	return true, nil
}

// roomPresence applies an occupant presence to the room table and
// publishes the resulting PRESENCE event.
func (ev *Events) roomPresence(p *protocol.Presence) {
	from := protocol.UnescapeJID(p.From)
	roomJID := protocol.Bare(from)
	nick := protocol.Resource(from)
	item := p.Item()
	unavailable := p.Type == "unavailable"
	nickChange := p.HasStatus(statusNickChanged)

	var (
		out  models.PresenceEvent
		emit = true
	)
	ev.session.write(func() {
		s := ev.session
		r := s.room(roomJID)
		current := s.currentUser(r)

		if unavailable && !nickChange && nick == current.Nick {
			if r == nil {
				emit = false
				return
			}
			out = ev.selfLeave(r, p, from, nick, item)
			return
		}

		r = s.ensureRoom(roomJID)
		var user *models.Occupant
		action := models.ActionJoin
		switch {
		case !unavailable:
			user = r.Roster.Get(from)
			if user != nil {
				user.Affiliation = models.Affiliation(item.Affiliation)
				user.Role = models.Role(item.Role)
				break
			}
			user = models.NewOccupant(from, nick, models.Affiliation(item.Affiliation), models.Role(item.Role))
			if r.Self == nil && (nick == s.user.Nick || p.HasStatus(statusNickAssigned)) {
				r.Self = user
			}
			r.Roster.Add(user)
		default:
			user = r.Roster.Get(from)
			if user == nil {
				user = models.NewOccupant(from, nick, models.Affiliation(item.Affiliation), models.Role(item.Role))
			}
			r.Roster.Remove(from)
			if nickChange && item.Nick != "" {
				action = models.ActionNickChange
				user.Rename(item.Nick)
				r.Roster.Add(user)
				break
			}
			action = models.ActionLeave
			if models.Role(item.Role) == models.RoleNone {
				action = removalAction(p)
				out.Reason = item.Reason
				out.Actor = item.Actor.Name()
			}
		}
		out.RoomJID = roomJID
		out.RoomName = r.Name()
		out.Action = action
		out.User = user.Snapshot()
		out.CurrentUser = s.currentUser(r)
	})
	if emit {
		publish(ev.bus, out)
	}
}

// selfLeave drops a room we are no longer in. Callers hold the write
// lock.
func (ev *Events) selfLeave(r *models.Room, p *protocol.Presence, from, nick string, item protocol.MUCItem) models.PresenceEvent {
	out := models.PresenceEvent{
		RoomJID:     r.JID,
		RoomName:    r.Name(),
		Action:      models.ActionLeave,
		Self:        true,
		User:        models.Occupant{JID: from, Nick: nick, Affiliation: models.Affiliation(item.Affiliation), Role: models.Role(item.Role)},
		CurrentUser: ev.session.currentUser(r),
	}
	if models.Role(item.Role) == models.RoleNone {
		out.Action = removalAction(p)
		out.Reason = item.Reason
		out.Actor = item.Actor.Name()
	}
	ev.session.removeRoom(r.JID)
	return out
}

func removalAction(p *protocol.Presence) models.PresenceAction {
	switch {
	case p.HasStatus(statusKicked):
		return models.ActionKick
	case p.HasStatus(statusBanned):
		return models.ActionBan
	}
	return models.ActionLeave
}

// roomPresenceError reports a failed join and forgets the room.
func (ev *Events) roomPresenceError(p *protocol.Presence) {
	roomJID := protocol.Bare(protocol.UnescapeJID(p.From))
	out := models.PresenceErrorEvent{
		RoomJID: roomJID,
		Type:    p.Error.Condition(),
	}
	out.Text, _ = p.Error.Text()
	ev.session.write(func() {
		if r := ev.session.room(roomJID); r != nil {
			out.RoomName = r.Name()
		}
		ev.session.removeRoom(roomJID)
	})
	publish(ev.bus, out)
}
