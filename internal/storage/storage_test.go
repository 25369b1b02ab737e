package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tavern/internal/client"
	"tavern/internal/models"
)

const room = "lobby@muc.example.org"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(s.Close)
	return s
}

func at(sec int) time.Time {
	return time.Date(2024, 3, 1, 10, 0, sec, 0, time.UTC)
}

func msg(sender, body string, ts time.Time) models.StoredMessage {
	return models.StoredMessage{RoomJID: room, Sender: sender, Body: body, MsgType: "groupchat", Timestamp: ts}
}

func bodies(msgs []models.StoredMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Body)
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestLatestMessagesAreChronological(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, body := range []string{"one", "two", "three", "four"} {
		require.NoError(t, s.SaveMessage(ctx, msg("alice", body, at(i))))
	}
	require.NoError(t, s.SaveMessage(ctx, models.StoredMessage{RoomJID: "other@muc.example.org", Sender: "bob", Body: "elsewhere", MsgType: "groupchat", Timestamp: at(9)}))

	got, err := s.LatestMessages(ctx, room, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"two", "three", "four"}, bodies(got))
	require.True(t, at(3).Equal(got[2].Timestamp))
	require.NotZero(t, got[0].ID)
}

func TestReplayedHistoryIsStoredOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := msg("alice", "hello", at(1))
	m.Delayed = true

	require.NoError(t, s.SaveMessages(ctx, []models.StoredMessage{m, m}))
	require.NoError(t, s.SaveMessage(ctx, m))

	got, err := s.LatestMessages(ctx, room, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Delayed)
}

func TestMessagesSinceAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, body := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveMessage(ctx, msg("alice", body, at(i))))
	}

	got, err := s.MessagesSince(ctx, room, at(0), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, bodies(got))

	n, err := s.DeleteOlderThan(ctx, room, at(2))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	latest, err := s.LatestTimestamp(ctx, room)
	require.NoError(t, err)
	require.True(t, at(2).Equal(latest))

	_, err = s.LatestTimestamp(ctx, "empty@muc.example.org")
	require.ErrorIs(t, err, ErrNoRows)
}

func TestSightingUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LastSeen(ctx, room, "alice")
	require.ErrorIs(t, err, ErrNoRows)

	require.NoError(t, s.SaveSighting(ctx, Sighting{RoomJID: room, Nick: "alice", Affiliation: models.AffiliationMember, Role: models.RoleParticipant, LastAction: models.ActionJoin, LastSeen: at(1)}))
	require.NoError(t, s.SaveSighting(ctx, Sighting{RoomJID: room, Nick: "alice", Affiliation: models.AffiliationMember, Role: models.RoleNone, LastAction: models.ActionKick, LastSeen: at(5)}))

	sg, err := s.LastSeen(ctx, room, "alice")
	require.NoError(t, err)
	require.Equal(t, models.ActionKick, sg.LastAction)
	require.Equal(t, models.RoleNone, sg.Role)
	require.True(t, at(5).Equal(sg.LastSeen))
}

func TestInitSessionDB(t *testing.T) {
	_, err := InitSessionDB("", 8, nil)
	require.ErrorIs(t, err, ErrInvalidPath)

	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	sdb, err := InitSessionDB(path, 8, nil)
	require.NoError(t, err)
	require.NoError(t, sdb.History.Enqueue(msg("alice", "queued", at(1))))
	sdb.Close()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LatestMessages(context.Background(), room, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"queued"}, bodies(got))
}

func TestHistoryRecordsBusMessages(t *testing.T) {
	s := newTestStore(t)
	h := NewHistoryManager(16, nil)
	h.now = func() time.Time { return at(30) }
	h.Start(s)

	bus := client.NewBus()
	handle := h.Attach(bus)

	bus.NotifyObservers(models.KeyMessage, models.MessageEvent{RoomJID: room, Message: models.Message{Name: "alice", Body: "live", Type: "groupchat"}})
	bus.NotifyObservers(models.KeyMessage, models.MessageEvent{RoomJID: room, Message: models.Message{Name: "bob", Body: "old", Type: "groupchat"}, Timestamp: "2024-03-01T10:00:05Z", Time: at(5)})
	bus.NotifyObservers(models.KeyMessage, models.MessageEvent{RoomJID: room, Message: models.Message{Name: "carol", Type: "groupchat"}})

	client.Unsubscribe(bus, handle)
	h.Stop()

	got, err := s.LatestMessages(context.Background(), room, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"old", "live"}, bodies(got))
	require.True(t, got[0].Delayed)
	require.False(t, got[1].Delayed)
	require.True(t, at(30).Equal(got[1].Timestamp))
}

func TestEnqueueFailsFastWhenFull(t *testing.T) {
	h := NewHistoryManager(1, nil)
	require.NoError(t, h.Enqueue(msg("alice", "a", at(1))))
	require.ErrorIs(t, h.Enqueue(msg("alice", "b", at(2))), ErrQueueFull)
}

func TestSeenRecordsPresence(t *testing.T) {
	s := newTestStore(t)
	m := NewSeenManager(16, nil)
	m.now = func() time.Time { return at(7) }
	m.Start(s)

	bus := client.NewBus()
	m.Attach(bus)
	bus.NotifyObservers(models.KeyPresence, models.PresenceEvent{
		RoomJID: room,
		Action:  models.ActionLeave,
		User:    models.Occupant{JID: room + "/alice", Nick: "alice", Affiliation: models.AffiliationMember, Role: models.RoleNone},
	})
	m.Stop()

	sg, err := s.LastSeen(context.Background(), room, "alice")
	require.NoError(t, err)
	require.Equal(t, models.ActionLeave, sg.LastAction)
	require.Equal(t, models.AffiliationMember, sg.Affiliation)
	require.True(t, at(7).Equal(sg.LastSeen))
}

func TestExportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, body := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveMessage(ctx, msg("alice", body, at(i))))
	}

	payload, last, err := s.ExportRoom(ctx, room, time.Time{}, 10)
	require.NoError(t, err)
	require.True(t, at(2).Equal(last))

	got, err := ReadExport(payload)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, bodies(got))
	require.Equal(t, room, got[0].RoomJID)

	payload, last, err = s.ExportRoom(ctx, room, at(2), 10)
	require.NoError(t, err)
	require.Nil(t, payload)
	require.True(t, at(2).Equal(last))

	got, err = ReadExport(nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadExportRejectsGarbage(t *testing.T) {
	_, err := ReadExport([]byte("not gzip"))
	require.Error(t, err)
}
