package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRosterAddGetRemove(t *testing.T) {
	r := NewRoster()
	alice := NewOccupant("lobby@muc.example.org/alice", "alice", AffiliationMember, RoleParticipant)
	r.Add(alice)
	r.Add(NewOccupant("lobby@muc.example.org/Bob", "Bob", AffiliationNone, RoleVisitor))

	require.Equal(t, 2, r.Len())
	require.Same(t, alice, r.Get("lobby@muc.example.org/alice"))
	require.Equal(t, []string{"alice", "Bob"}, nicks(r.All()))

	r.Remove("lobby@muc.example.org/alice")
	require.Nil(t, r.Get("lobby@muc.example.org/alice"))
	require.Equal(t, 1, r.Len())
}

func nicks(os []*Occupant) []string {
	out := make([]string, 0, len(os))
	for _, o := range os {
		out = append(out, o.Nick)
	}
	return out
}

func TestOccupantRename(t *testing.T) {
	o := NewOccupant("lobby@muc.example.org/alice", "alice", AffiliationNone, RoleParticipant)
	o.Rename("alicia")
	require.Equal(t, "alicia", o.Nick)
	require.Equal(t, "alice", o.PreviousNick)
	require.Equal(t, "lobby@muc.example.org/alicia", o.JID)
}

func TestOccupantIsModerator(t *testing.T) {
	tests := []struct {
		name string
		o    Occupant
		want bool
	}{
		{"moderator role", Occupant{Role: RoleModerator, Affiliation: AffiliationNone}, true},
		{"owner", Occupant{Role: RoleParticipant, Affiliation: AffiliationOwner}, true},
		{"admin participant", Occupant{Role: RoleParticipant, Affiliation: AffiliationAdmin}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.o.IsModerator())
		})
	}
}

func TestRoomName(t *testing.T) {
	r := NewRoom("lobby@muc.example.org")
	require.False(t, r.HasName())
	require.Equal(t, "lobby", r.DisplayName())

	r.SetName("The Lobby")
	require.True(t, r.HasName())
	require.Equal(t, "The Lobby", r.DisplayName())
}

func TestPrivacyListToggle(t *testing.T) {
	u := NewUser("me@example.org", "me")
	require.True(t, u.TogglePrivacyList(IgnoreListName, "troll@example.org"))
	require.True(t, u.IsInPrivacyList(IgnoreListName, "troll@example.org"))
	require.True(t, u.TogglePrivacyList(IgnoreListName, "spam@example.org"))
	require.Equal(t, []string{"troll@example.org", "spam@example.org"}, u.PrivacyList(IgnoreListName).Items())

	require.False(t, u.TogglePrivacyList(IgnoreListName, "troll@example.org"))
	require.False(t, u.IsInPrivacyList(IgnoreListName, "troll@example.org"))
	require.False(t, u.PrivacyList(IgnoreListName).Add("spam@example.org"))
}

func TestStatusText(t *testing.T) {
	b, err := StatusAttached.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "attached", string(b))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("AUTHFAIL")))
	require.Equal(t, StatusAuthFail, s)
	require.ErrorIs(t, s.UnmarshalText([]byte("bogus")), ErrInvalidStatus)
}

func TestEventKeys(t *testing.T) {
	events := []Event{ChatEvent{}, PresenceEvent{}, MessageEvent{}, LoginEvent{}, PresenceErrorEvent{}}
	for i, e := range events {
		require.Equal(t, AllKeys[i], e.Key())
	}
}
