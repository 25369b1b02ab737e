package models

import "time"

// Key selects one of the five event channels.
type Key int

const (
	KeyChat          Key = 1
	KeyPresence      Key = 2
	KeyMessage       Key = 3
	KeyLogin         Key = 4
	KeyPresenceError Key = 5
)

var AllKeys = []Key{KeyChat, KeyPresence, KeyMessage, KeyLogin, KeyPresenceError}

func (k Key) String() string {
	switch k {
	case KeyChat:
		return "chat"
	case KeyPresence:
		return "presence"
	case KeyMessage:
		return "message"
	case KeyLogin:
		return "login"
	case KeyPresenceError:
		return "presence_error"
	}
	return "unknown"
}

// Event is the closed set of payloads published by the event layer. Each
// concrete type belongs to exactly one Key.
type Event interface {
	Key() Key
	isEvent()
}

type ChatKind string

const (
	ChatConnection ChatKind = "connection"
	ChatAdmin      ChatKind = "admin"
	ChatServer     ChatKind = "server"
	ChatInvite     ChatKind = "invite"
	ChatChatstate  ChatKind = "chatstate"
)

// ChatEvent carries connection status lines and out-of-room notices.
// Type mirrors the stanza type for admin and server messages and is
// "connection", "invite" or "chatstate" otherwise.
type ChatEvent struct {
	Kind      ChatKind   `json:"kind"`
	Type      string     `json:"type"`
	Status    Status     `json:"status,omitempty"`
	Message   string     `json:"message,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Invite    *Invite    `json:"invite,omitempty"`
	Chatstate *Chatstate `json:"chatstate,omitempty"`
}

type Invite struct {
	RoomJID         string `json:"room_jid"`
	From            string `json:"from"`
	Reason          string `json:"reason"`
	Password        string `json:"password,omitempty"`
	ContinuedThread string `json:"continued_thread,omitempty"`
}

type Chatstate struct {
	RoomJID string `json:"room_jid"`
	Name    string `json:"name"`
	State   string `json:"state"`
}

type PresenceAction string

const (
	ActionJoin       PresenceAction = "join"
	ActionLeave      PresenceAction = "leave"
	ActionKick       PresenceAction = "kick"
	ActionBan        PresenceAction = "ban"
	ActionNickChange PresenceAction = "nickchange"
)

// PresenceEvent reports a roster change. Self is set when the local
// client itself left the room, in which case the room is already gone.
type PresenceEvent struct {
	RoomJID     string         `json:"room_jid"`
	RoomName    string         `json:"room_name"`
	Action      PresenceAction `json:"action"`
	Self        bool           `json:"self"`
	Reason      string         `json:"reason,omitempty"`
	Actor       string         `json:"actor,omitempty"`
	User        Occupant       `json:"user"`
	CurrentUser Occupant       `json:"current_user"`
}

type PresenceErrorEvent struct {
	RoomJID  string `json:"room_jid"`
	RoomName string `json:"room_name"`
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
}

// MessageEvent carries a classified message. Timestamp is the raw delay
// stamp, Time its parsed form; both are zero for live messages.
type MessageEvent struct {
	RoomJID   string    `json:"room_jid"`
	Message   Message   `json:"message"`
	Timestamp string    `json:"timestamp,omitempty"`
	Time      time.Time `json:"time,omitempty"`
}

type LoginEvent struct {
	PresetJID string `json:"preset_jid,omitempty"`
}

func (ChatEvent) Key() Key          { return KeyChat }
func (PresenceEvent) Key() Key      { return KeyPresence }
func (PresenceErrorEvent) Key() Key { return KeyPresenceError }
func (MessageEvent) Key() Key       { return KeyMessage }
func (LoginEvent) Key() Key         { return KeyLogin }

func (ChatEvent) isEvent()          {}
func (PresenceEvent) isEvent()      {}
func (PresenceErrorEvent) isEvent() {}
func (MessageEvent) isEvent()       {}
func (LoginEvent) isEvent()         {}
