package ui

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tavern/internal/models"
	"tavern/internal/storage"
	"tavern/internal/utils"
)

type fakeActions struct {
	calls []string
	err   error
}

func (f *fakeActions) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeActions) JoinRoom(_ context.Context, room, password string) error {
	return f.record("join %s %s", room, password)
}

func (f *fakeActions) LeaveRoom(_ context.Context, room string) error {
	return f.record("leave %s", room)
}

func (f *fakeActions) SendMessage(_ context.Context, to, text, kind string) (bool, error) {
	return f.err == nil, f.record("send %s %s %s", kind, to, text)
}

func (f *fakeActions) UserAction(_ context.Context, room, userJID string, action models.PresenceAction, reason string) (bool, error) {
	return f.err == nil, f.record("%s %s %s %s", action, room, userJID, reason)
}

func (f *fakeActions) SetSubject(_ context.Context, room, subject string) error {
	return f.record("subject %s %s", room, subject)
}

func (f *fakeActions) IgnoreUnignore(_ context.Context, userJID string) error {
	return f.record("ignore %s", userJID)
}

type fakeHistory struct {
	msgs     []models.StoredMessage
	sighting *storage.Sighting
	limit    int
}

func (f *fakeHistory) LatestMessages(_ context.Context, _ string, limit int) ([]models.StoredMessage, error) {
	f.limit = limit
	return f.msgs, nil
}

func (f *fakeHistory) LastSeen(context.Context, string, string) (storage.Sighting, error) {
	if f.sighting == nil {
		return storage.Sighting{}, storage.ErrNoRows
	}
	return *f.sighting, nil
}

const lobby = "lobby@muc.example.org"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"hello there", Command{Name: "say", Rest: "hello there"}},
		{"//etc/passwd is a file", Command{Name: "say", Rest: "/etc/passwd is a file"}},
		{"/me waves", Command{Name: "say", Rest: "/me waves"}},
		{"/join lobby@muc.example.org", Command{Name: "join", Args: []string{lobby}}},
		{"/JOIN lobby@muc.example.org secret", Command{Name: "join", Args: []string{lobby, "secret"}}},
		{"/leave", Command{Name: "leave"}},
		{"/msg alice  hi  there", Command{Name: "msg", Args: []string{"alice"}, Rest: "hi  there"}},
		{"/kick troll", Command{Name: "kick", Args: []string{"troll"}}},
		{"/ban troll go away", Command{Name: "ban", Args: []string{"troll"}, Rest: "go away"}},
		{"/topic", Command{Name: "topic"}},
		{"/topic Welcome all", Command{Name: "topic", Rest: "Welcome all"}},
		{"/history 50", Command{Name: "history", Args: []string{"50"}}},
		{"/quit", Command{Name: "quit"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"/dance", ErrUnknownCommand},
		{"/say hi", ErrUnknownCommand},
		{"/join", ErrUsage},
		{"/msg alice", ErrUsage},
		{"/kick", ErrUsage},
		{"   ", ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			require.ErrorIs(t, err, tt.want)
			require.True(t, utils.IsValidationError(err))
		})
	}
}

func run(t *testing.T, c *Commander, current, line string) (Result, error) {
	t.Helper()
	cmd, err := ParseCommand(line)
	require.NoError(t, err)
	return c.Execute(context.Background(), current, cmd)
}

func TestExecuteRoomCommands(t *testing.T) {
	tests := []struct {
		name    string
		current string
		line    string
		call    string
		result  Result
	}{
		{"say in room", lobby, "hello", "send groupchat " + lobby + " hello", Result{}},
		{"join", consoleKey, "/join " + lobby + " pw", "join " + lobby + " pw", Result{Buffer: lobby, Focus: true}},
		{"leave", lobby, "/leave", "leave " + lobby, Result{}},
		{"kick", lobby, "/kick troll spam", "kick " + lobby + " " + lobby + "/troll spam", Result{}},
		{"ban from private buffer", lobby + "/alice", "/ban troll", "ban " + lobby + " " + lobby + "/troll ", Result{}},
		{"topic", lobby, "/topic Rules", "subject " + lobby + " Rules", Result{}},
		{"leave private closes buffer", lobby + "/alice", "/leave", "", Result{Buffer: lobby + "/alice", Close: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := &fakeActions{}
			c := NewCommander(actions, nil, func(string) string { return "me" })
			res, err := run(t, c, tt.current, tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.result, res)
			if tt.call == "" {
				require.Empty(t, actions.calls)
				return
			}
			require.Equal(t, []string{tt.call}, actions.calls)
		})
	}
}

func TestExecutePrivateMessagesEchoLocally(t *testing.T) {
	actions := &fakeActions{}
	c := NewCommander(actions, nil, func(string) string { return "me" })

	res, err := run(t, c, lobby, "/msg alice psst")
	require.NoError(t, err)
	require.Equal(t, []string{"send chat " + lobby + "/alice psst"}, actions.calls)
	require.Equal(t, lobby+"/alice", res.Buffer)
	require.True(t, res.Focus)
	require.Len(t, res.Lines, 1)
	require.Contains(t, res.Lines[0], colored("me")+"> psst")

	res, err = run(t, c, lobby+"/alice", "again")
	require.NoError(t, err)
	require.Equal(t, "send chat "+lobby+"/alice again", actions.calls[1])
	require.Equal(t, lobby+"/alice", res.Buffer)
	require.False(t, res.Focus)
}

func TestExecuteNeedsRoom(t *testing.T) {
	for _, line := range []string{"hello", "/leave", "/topic x", "/kick troll", "/seen bob"} {
		t.Run(line, func(t *testing.T) {
			actions := &fakeActions{}
			_, err := run(t, NewCommander(actions, nil, nil), consoleKey, line)
			require.ErrorIs(t, err, ErrNoRoom)
			require.Empty(t, actions.calls)
		})
	}
}

func TestExecuteConsoleCommands(t *testing.T) {
	actions := &fakeActions{}
	c := NewCommander(actions, nil, nil)

	res, err := run(t, c, consoleKey, "/ignore troll@example.org")
	require.NoError(t, err)
	require.Equal(t, []string{"ignore troll@example.org"}, actions.calls)
	require.Equal(t, consoleKey, res.Buffer)

	res, err = run(t, c, consoleKey, "/quit")
	require.NoError(t, err)
	require.True(t, res.Quit)
}

func TestExecuteHistoryAndSeen(t *testing.T) {
	seen := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	h := &fakeHistory{
		msgs: []models.StoredMessage{
			{RoomJID: lobby, Sender: "alice", Body: "one", MsgType: "groupchat", Timestamp: seen},
			{RoomJID: lobby, Sender: "bob", Body: "two", MsgType: "groupchat", Timestamp: seen},
		},
	}
	c := NewCommander(&fakeActions{}, h, nil)

	res, err := run(t, c, lobby, "/history 5")
	require.NoError(t, err)
	require.Equal(t, 5, h.limit)
	require.Len(t, res.Lines, 4)
	require.Equal(t, "2024 Mar 01 10:00 <"+colored("alice")+"> one", res.Lines[1])

	_, err = run(t, c, lobby, "/history")
	require.NoError(t, err)
	require.Equal(t, defaultHistoryLines, h.limit)

	_, err = run(t, c, lobby, "/history lots")
	require.ErrorIs(t, err, ErrUsage)

	res, err = run(t, c, lobby, "/seen carol")
	require.NoError(t, err)
	require.Equal(t, []string{"-!- carol has not been seen here"}, res.Lines)

	h.sighting = &storage.Sighting{RoomJID: lobby, Nick: "carol", LastAction: models.ActionLeave, LastSeen: seen}
	res, err = run(t, c, lobby, "/seen carol")
	require.NoError(t, err)
	require.Equal(t, []string{"-!- " + colored("carol") + " was last seen 2024 Mar 01 10:00 (leave)"}, res.Lines)
}

func TestExecuteWithoutHistory(t *testing.T) {
	c := NewCommander(&fakeActions{}, nil, nil)
	_, err := run(t, c, lobby, "/history")
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestExecutePropagatesActionErrors(t *testing.T) {
	boom := utils.NewTavernError("boom")
	c := NewCommander(&fakeActions{err: boom}, nil, nil)
	_, err := run(t, c, lobby, "/join "+lobby)
	require.ErrorIs(t, err, boom)
	_, err = run(t, c, lobby+"/alice", "hello")
	require.ErrorIs(t, err, boom)
}
