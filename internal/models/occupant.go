package models

import "strings"

type Affiliation string

const (
	AffiliationOwner   Affiliation = "owner"
	AffiliationAdmin   Affiliation = "admin"
	AffiliationMember  Affiliation = "member"
	AffiliationOutcast Affiliation = "outcast"
	AffiliationNone    Affiliation = "none"
)

type Role string

const (
	RoleModerator   Role = "moderator"
	RoleParticipant Role = "participant"
	RoleVisitor     Role = "visitor"
	RoleNone        Role = "none"
)

// Occupant is one participant of a room, keyed by its full occupant
// address (room@service/nick).
type Occupant struct {
	JID          string      `json:"jid"`
	Nick         string      `json:"nick"`
	Affiliation  Affiliation `json:"affiliation,omitempty"`
	Role         Role        `json:"role,omitempty"`
	PreviousNick string      `json:"previous_nick,omitempty"`
}

func NewOccupant(jid, nick string, affiliation Affiliation, role Role) *Occupant {
	return &Occupant{
		JID:         jid,
		Nick:        nick,
		Affiliation: affiliation,
		Role:        role,
	}
}

func (o *Occupant) IsModerator() bool {
	return o.Role == RoleModerator || o.Affiliation == AffiliationOwner
}

// Rename moves the occupant to a new nickname inside the same room.
func (o *Occupant) Rename(nick string) {
	bare, _, _ := strings.Cut(o.JID, "/")
	o.PreviousNick = o.Nick
	o.Nick = nick
	o.JID = bare + "/" + nick
}

// Snapshot returns a copy safe to hand to subscribers.
func (o *Occupant) Snapshot() Occupant {
	if o == nil {
		return Occupant{}
	}
	return *o
}
