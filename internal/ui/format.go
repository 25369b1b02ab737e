package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rivo/tview"

	"tavern/internal/models"
	"tavern/internal/protocol"
	"tavern/internal/storage"
	"tavern/internal/utils"
)

func timestamp(t, now time.Time) string {
	if t.IsZero() {
		return now.Format("15:04")
	}
	return utils.FormatPrettyTime(t)
}

func nick(name string) string {
	return fmt.Sprintf("[%s]%s[-]", utils.NickColor(name), tview.Escape(name))
}

func roomLabel(name, jid string) string {
	if name != "" {
		return name
	}
	return protocol.Node(jid)
}

// FormatMessage renders one chat line. Delayed messages show the time
// they were sent.
func FormatMessage(ev models.MessageEvent, now time.Time) string {
	return formatLine(ev.Message.Name, ev.Message.Body, ev.Message.Type, timestamp(ev.Time, now))
}

func FormatStored(m models.StoredMessage) string {
	return formatLine(m.Sender, m.Body, m.MsgType, utils.FormatPrettyTime(m.Timestamp))
}

func formatLine(sender, body, typ, ts string) string {
	switch {
	case typ == "subject":
		return fmt.Sprintf("%s -!- Topic for %s: %s", ts, tview.Escape(sender), tview.Escape(body))
	case typ == "info" || sender == "":
		return fmt.Sprintf("%s -!- %s", ts, tview.Escape(body))
	case strings.HasPrefix(body, "/me "):
		return fmt.Sprintf("%s * %s %s", ts, nick(sender), tview.Escape(strings.TrimPrefix(body, "/me ")))
	}
	return fmt.Sprintf("%s <%s> %s", ts, nick(sender), tview.Escape(body))
}

func FormatPresence(ev models.PresenceEvent) string {
	who := nick(ev.User.Nick)
	room := tview.Escape(roomLabel(ev.RoomName, ev.RoomJID))
	by := ""
	if ev.Actor != "" {
		by = " by " + tview.Escape(ev.Actor)
	}
	why := ""
	if ev.Reason != "" {
		why = ": " + tview.Escape(ev.Reason)
	}

	if ev.Self {
		switch ev.Action {
		case models.ActionKick:
			return fmt.Sprintf("<- You were kicked from %s%s%s", room, by, why)
		case models.ActionBan:
			return fmt.Sprintf("<- You were banned from %s%s%s", room, by, why)
		default:
			return fmt.Sprintf("<- You left %s", room)
		}
	}

	switch ev.Action {
	case models.ActionJoin:
		return fmt.Sprintf("-> %s joined", who)
	case models.ActionKick:
		return fmt.Sprintf("<- %s was kicked%s%s", who, by, why)
	case models.ActionBan:
		return fmt.Sprintf("<- %s was banned%s%s", who, by, why)
	case models.ActionNickChange:
		return fmt.Sprintf("-- %s is now known as %s", tview.Escape(ev.User.PreviousNick), who)
	}
	return fmt.Sprintf("<- %s left", who)
}

func FormatPresenceError(ev models.PresenceErrorEvent) string {
	line := fmt.Sprintf("Could not enter %s: %s", tview.Escape(roomLabel(ev.RoomName, ev.RoomJID)), tview.Escape(ev.Type))
	if ev.Text != "" {
		line += " (" + tview.Escape(ev.Text) + ")"
	}
	return line
}

// FormatChat renders a console line. Chatstates have none.
func FormatChat(ev models.ChatEvent) (string, bool) {
	switch ev.Kind {
	case models.ChatConnection:
		return "-!- Connection: " + ev.Status.String(), true
	case models.ChatAdmin:
		return "-!- [admin] " + tview.Escape(ev.Message), true
	case models.ChatServer:
		if ev.Subject != "" {
			return fmt.Sprintf("-!- [server] %s: %s", tview.Escape(ev.Subject), tview.Escape(ev.Message)), true
		}
		return "-!- [server] " + tview.Escape(ev.Message), true
	case models.ChatInvite:
		if ev.Invite == nil {
			return "", false
		}
		return "-!- " + FormatInvite(*ev.Invite), true
	}
	return "", false
}

func FormatInvite(inv models.Invite) string {
	line := fmt.Sprintf("%s invites you to %s", tview.Escape(inv.From), tview.Escape(inv.RoomJID))
	if inv.Reason != "" {
		line += ": " + tview.Escape(inv.Reason)
	}
	return line
}

// FormatChatstate is the status bar hint for a typing notification.
func FormatChatstate(cs models.Chatstate) string {
	switch cs.State {
	case "composing":
		return cs.Name + " is typing"
	case "paused":
		return cs.Name + " stopped typing"
	}
	return ""
}

func rolePrefix(o models.Occupant) string {
	switch {
	case o.IsModerator():
		return "@"
	case o.Role == models.RoleParticipant:
		return "+"
	}
	return " "
}

func roleRank(o models.Occupant) int {
	switch {
	case o.IsModerator():
		return 0
	case o.Role == models.RoleParticipant:
		return 1
	}
	return 2
}

// FormatOccupants sorts moderators first, then participants, then
// visitors, each by nickname.
func FormatOccupants(occupants []models.Occupant) []string {
	sorted := append([]models.Occupant(nil), occupants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ri, rj := roleRank(sorted[i]), roleRank(sorted[j]); ri != rj {
			return ri < rj
		}
		return strings.ToLower(sorted[i].Nick) < strings.ToLower(sorted[j].Nick)
	})
	out := make([]string, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, rolePrefix(o)+nick(o.Nick))
	}
	return out
}

func FormatSighting(sg storage.Sighting) string {
	return fmt.Sprintf("-!- %s was last seen %s (%s)", nick(sg.Nick), utils.FormatPrettyTime(sg.LastSeen), sg.LastAction)
}

// BufferLabel is the room list entry with its unread count. An empty
// name falls back to @nick for private chats and the local part for
// rooms.
func BufferLabel(key, name string, unread int) string {
	label := name
	switch {
	case key == consoleKey:
		label = "*console*"
	case label != "":
	case protocol.Resource(key) != "":
		label = "@" + protocol.Resource(key)
	default:
		label = protocol.Node(key)
	}
	if unread > 0 {
		return fmt.Sprintf("%s (%d)", label, unread)
	}
	return label
}
