package models

import (
	"sort"
	"strings"
)

// Roster maps occupant addresses to occupants for a single room.
type Roster struct {
	items map[string]*Occupant
}

func NewRoster() *Roster {
	return &Roster{items: make(map[string]*Occupant)}
}

// Add inserts or replaces the occupant stored under o.JID.
func (r *Roster) Add(o *Occupant) {
	r.items[o.JID] = o
}

func (r *Roster) Get(jid string) *Occupant {
	return r.items[jid]
}

func (r *Roster) Remove(jid string) {
	delete(r.items, jid)
}

func (r *Roster) Len() int {
	return len(r.items)
}

// All returns the occupants ordered by nickname.
func (r *Roster) All() []*Occupant {
	out := make([]*Occupant, 0, len(r.items))
	for _, o := range r.items {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nick) < strings.ToLower(out[j].Nick)
	})
	return out
}
