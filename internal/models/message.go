// Package models defines the chat data model shared by the client core,
// storage, relay and UI.
package models

import "time"

// Message kinds beyond the stanza's own type attribute.
const (
	MessageTypeSubject   = "subject"
	MessageTypeInfo      = "info"
	MessageTypeGroupchat = "groupchat"
	MessageTypeChat      = "chat"
)

// Message is a classified inbound chat line.
type Message struct {
	Name                  string `json:"name"`
	Body                  string `json:"body"`
	Type                  string `json:"type"`
	IsNoConferenceRoomJID bool   `json:"is_no_conference_room_jid,omitempty"`
}

// StoredMessage is a message row in local history.
type StoredMessage struct {
	ID        int64     `json:"id,omitempty"`
	RoomJID   string    `json:"room_jid"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	MsgType   string    `json:"msg_type"`
	Delayed   bool      `json:"delayed"`
	Timestamp time.Time `json:"timestamp"`
}
