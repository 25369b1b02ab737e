package client

import (
	"sort"
	"sync"

	"tavern/internal/models"
	"tavern/internal/protocol"
)

// Session holds the client-wide state: the local user, the room table,
// the connection status and the options. Stanza handlers are the only
// writers; other goroutines read through the snapshot accessors.
type Session struct {
	mu      sync.RWMutex
	user    *models.User
	rooms   map[string]*models.Room
	status  models.Status
	options Options
}

func NewSession(user *models.User, opts Options) *Session {
	if user == nil {
		user = models.NewUser("", "")
	}
	return &Session{
		user:    user,
		rooms:   make(map[string]*models.Room),
		status:  models.StatusDisconnected,
		options: opts,
	}
}

// reset installs a new user and forgets every room.
func (s *Session) reset(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.rooms = make(map[string]*models.Room)
}

func (s *Session) write(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Session) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// room returns the tracked room; callers hold the lock. Room addresses
// are compared in their bare, case-mapped form.
func (s *Session) room(jid string) *models.Room {
	return s.rooms[protocol.Bare(jid)]
}

// ensureRoom returns the tracked room, creating it on first reference;
// callers hold the write lock.
func (s *Session) ensureRoom(jid string) *models.Room {
	jid = protocol.Bare(jid)
	if r, ok := s.rooms[jid]; ok {
		return r
	}
	r := models.NewRoom(jid)
	s.rooms[jid] = r
	return r
}

func (s *Session) removeRoom(jid string) {
	delete(s.rooms, protocol.Bare(jid))
}

// currentUser is the room's self occupant, or the local user when the
// room has not echoed our own presence yet. Callers hold the lock.
func (s *Session) currentUser(r *models.Room) models.Occupant {
	if r != nil && r.Self != nil {
		return r.Self.Snapshot()
	}
	return models.Occupant{JID: s.user.JID, Nick: s.user.Nick}
}

func (s *Session) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

func (s *Session) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) setStatus(st models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *Session) UserJID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.JID
}

func (s *Session) UserNick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Nick
}

// IgnoreList returns a copy of the local ignore list.
func (s *Session) IgnoreList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.PrivacyList(models.IgnoreListName).Items()
}

func (s *Session) IsIgnored(jid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsInPrivacyList(models.IgnoreListName, jid)
}

func (s *Session) HasRoom(jid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[protocol.Bare(jid)]
	return ok
}

// RoomJIDs lists the tracked rooms in address order.
func (s *Session) RoomJIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rooms))
	for jid := range s.rooms {
		out = append(out, jid)
	}
	sort.Strings(out)
	return out
}

func (s *Session) Room(jid string) (RoomSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[protocol.Bare(jid)]
	if !ok {
		return RoomSnapshot{}, false
	}
	return snapshotRoom(r), true
}

func (s *Session) Rooms() []RoomSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomSnapshot, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, snapshotRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JID < out[j].JID })
	return out
}

func snapshotRoom(r *models.Room) RoomSnapshot {
	snap := RoomSnapshot{
		JID:     r.JID,
		Name:    r.Name(),
		Subject: r.Subject,
		HasSelf: r.Self != nil,
	}
	if r.Self != nil {
		snap.Self = r.Self.Snapshot()
	}
	for _, o := range r.Roster.All() {
		snap.Occupants = append(snap.Occupants, o.Snapshot())
	}
	return snap
}
