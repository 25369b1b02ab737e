package models

import "strings"

// Room is a multi-user chat room the client has joined or discovered.
type Room struct {
	JID     string
	Self    *Occupant
	Roster  *Roster
	Subject string

	name    string
	hasName bool
}

func NewRoom(jid string) *Room {
	return &Room{
		JID:    jid,
		Roster: NewRoster(),
	}
}

// Name is empty until disco info names the room.
func (r *Room) Name() string {
	return r.name
}

func (r *Room) HasName() bool {
	return r.hasName
}

func (r *Room) SetName(name string) {
	r.name = name
	r.hasName = true
}

// DisplayName falls back to the local part of the room address.
func (r *Room) DisplayName() string {
	if r.hasName && r.name != "" {
		return r.name
	}
	local, _, found := strings.Cut(r.JID, "@")
	if !found {
		return r.JID
	}
	return local
}
