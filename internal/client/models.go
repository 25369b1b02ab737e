package client

import (
	"runtime"

	"tavern/internal/models"
)

// models.go types used in client session management

// Autojoin selects which rooms are entered after connecting: the
// server-side bookmarks, an explicit list, or nothing.
type Autojoin struct {
	Bookmarks bool
	Rooms     []string
}

func (a Autojoin) Enabled() bool {
	return a.Bookmarks || len(a.Rooms) > 0
}

type Options struct {
	Debug    bool
	Autojoin Autojoin

	ClientName    string
	ClientVersion string
	ClientOS      string
}

// DefaultOptions joins bookmarked rooms and keeps debug output off.
func DefaultOptions() Options {
	return Options{
		Autojoin:      Autojoin{Bookmarks: true},
		ClientName:    "tavern",
		ClientVersion: "dev",
		ClientOS:      runtime.GOOS,
	}
}

// Credentials decide the login mode: JID and password authenticate, a
// nick alone logs in anonymously, anything else asks for a login.
type Credentials struct {
	JID      string
	Password string
	Nick     string
	Service  string
}

type loginMode int

const (
	loginPrompt loginMode = iota
	loginAuthenticated
	loginAnonymous
)

// RoomSnapshot is a copy of a room's state for readers outside the
// dispatch goroutine.
type RoomSnapshot struct {
	JID       string
	Name      string
	Subject   string
	Self      models.Occupant
	HasSelf   bool
	Occupants []models.Occupant
}

// DisplayName is the disco name, or the room's local part until disco
// has answered.
func (r RoomSnapshot) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	room := models.NewRoom(r.JID)
	return room.DisplayName()
}
