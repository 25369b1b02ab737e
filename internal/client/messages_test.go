package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tavern/internal/models"
)

func TestRoomMessageClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *models.MessageEvent
	}{
		{
			name: "groupchat from occupant",
			raw:  `<message type="groupchat" from="lobby@muc.example.org/alice"><body>hi all</body></message>`,
			want: &models.MessageEvent{RoomJID: testRoom, Message: models.Message{Name: "alice", Body: "hi all", Type: "groupchat"}},
		},
		{
			name: "nick with a backslash sequence is kept as sent",
			raw:  `<message type="groupchat" from="lobby@muc.example.org/a\20b"><body>yo</body></message>`,
			want: &models.MessageEvent{RoomJID: testRoom, Message: models.Message{Name: `a\20b`, Body: "yo", Type: "groupchat"}},
		},
		{
			name: "groupchat from the room itself",
			raw:  `<message type="groupchat" from="lobby@muc.example.org"><body>room is now logged</body></message>`,
			want: &models.MessageEvent{RoomJID: testRoom, Message: models.Message{Body: "room is now logged", Type: "info"}},
		},
		{
			name: "subject change",
			raw:  `<message type="groupchat" from="lobby@muc.example.org/alice"><subject>Welcome</subject></message>`,
			want: &models.MessageEvent{RoomJID: testRoom, Message: models.Message{Name: "lobby", Body: "Welcome", Type: "subject"}},
		},
		{
			name: "private message from an occupant",
			raw:  `<message type="chat" from="lobby@muc.example.org/alice"><body>psst</body></message>`,
			want: &models.MessageEvent{RoomJID: alice, Message: models.Message{Name: "alice", Body: "psst", Type: "chat"}},
		},
		{
			name: "direct chat outside any room",
			raw:  `<message type="chat" from="bob@example.org/laptop"><body>hey</body></message>`,
			want: &models.MessageEvent{RoomJID: "bob@example.org/laptop", Message: models.Message{Name: "bob", Body: "hey", Type: "chat", IsNoConferenceRoomJID: true}},
		},
		{
			name: "server error with text",
			raw: `<message type="error" from="lobby@muc.example.org"><error code="500" type="wait">` +
				`<resource-constraint xmlns="urn:ietf:params:xml:ns:xmpp-stanzas"/>` +
				`<text xmlns="urn:ietf:params:xml:ns:xmpp-stanzas">slow down</text></error></message>`,
			want: &models.MessageEvent{RoomJID: testRoom, Message: models.Message{Body: "slow down", Type: "info"}},
		},
		{
			name: "error without code 500",
			raw: `<message type="error" from="lobby@muc.example.org"><error type="cancel">` +
				`<not-acceptable xmlns="urn:ietf:params:xml:ns:xmpp-stanzas"/>` +
				`<text xmlns="urn:ietf:params:xml:ns:xmpp-stanzas">nope</text></error></message>`,
		},
		{
			name: "groupchat without body or subject",
			raw:  `<message type="groupchat" from="lobby@muc.example.org/alice"><thread>t1</thread></message>`,
		},
		{
			name: "normal message from a user",
			raw:  `<message from="bob@example.org/laptop"><body>hello?</body></message>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Options{})
			h.feed(t, mucPresence(self, "", "member", "participant", ""))
			h.events.reset()

			h.feed(t, tt.raw)

			got := eventsOf[models.MessageEvent](h.events)
			if tt.want == nil {
				require.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.Equal(t, *tt.want, got[0])
		})
	}
}

func TestSubjectIsRecordedOnRoom(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.feed(t, mucPresence(self, "", "member", "participant", ""))
	h.feed(t, `<message type="groupchat" from="lobby@muc.example.org/alice"><subject>Rules</subject></message>`)

	snap, _ := h.cli.Room(testRoom)
	require.Equal(t, "Rules", snap.Subject)
}

func TestDelayedMessagesCarryTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		delay string
		stamp string
		want  time.Time
	}{
		{
			name:  "xep-0203",
			delay: `<delay xmlns="urn:xmpp:delay" from="lobby@muc.example.org" stamp="2024-03-01T10:20:30Z"/>`,
			stamp: "2024-03-01T10:20:30Z",
			want:  time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:  "legacy",
			delay: `<x xmlns="jabber:x:delay" stamp="20240301T10:20:30"/>`,
			stamp: "20240301T10:20:30",
			want:  time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Options{})
			h.feed(t, `<message type="groupchat" from="lobby@muc.example.org/alice"><body>earlier</body>`+tt.delay+`</message>`)

			got := eventsOf[models.MessageEvent](h.events)
			require.Len(t, got, 1)
			require.Equal(t, tt.stamp, got[0].Timestamp)
			require.True(t, tt.want.Equal(got[0].Time))
		})
	}
}

func TestServerAndAdminMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.ChatEvent
	}{
		{
			name: "admin broadcast",
			raw:  `<message from="example.org"><body>restart in 5 minutes</body></message>`,
			want: models.ChatEvent{Kind: models.ChatAdmin, Type: "message", Message: "restart in 5 minutes"},
		},
		{
			name: "admin headline",
			raw:  `<message from="example.org" type="headline"><body>motd</body></message>`,
			want: models.ChatEvent{Kind: models.ChatAdmin, Type: "headline", Message: "motd"},
		},
		{
			name: "server message to us",
			raw:  `<message from="example.org" to="me@example.org/tavern"><subject>Notice</subject><body>quota</body></message>`,
			want: models.ChatEvent{Kind: models.ChatServer, Type: "message", Subject: "Notice", Message: "quota"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Options{})
			h.feed(t, tt.raw)

			got := eventsOf[models.ChatEvent](h.events)
			require.Len(t, got, 1)
			require.Equal(t, tt.want, got[0])
			require.Empty(t, eventsOf[models.MessageEvent](h.events))
		})
	}
}

func TestInvites(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.Invite
	}{
		{
			name: "mediated",
			raw: `<message from="lobby@muc.example.org" to="me@example.org"><x xmlns="http://jabber.org/protocol/muc#user">` +
				`<invite from="alice@example.org/home"><reason>join us</reason><continue thread="th1"/></invite>` +
				`<password>pw</password></x></message>`,
			want: models.Invite{RoomJID: testRoom, From: "alice@example.org/home", Reason: "join us", Password: "pw", ContinuedThread: "th1"},
		},
		{
			name: "direct",
			raw: `<message from="alice@example.org/home" to="me@example.org">` +
				`<x xmlns="jabber:x:conference" jid="lobby@muc.example.org" reason="come" password="pw2"/></message>`,
			want: models.Invite{RoomJID: testRoom, From: "alice@example.org/home", Reason: "come", Password: "pw2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Options{})
			h.feed(t, tt.raw)

			got := eventsOf[models.ChatEvent](h.events)
			require.Len(t, got, 1)
			require.Equal(t, models.ChatInvite, got[0].Kind)
			require.Equal(t, "invite", got[0].Type)
			require.Equal(t, tt.want, *got[0].Invite)
		})
	}
}

func TestChatstateNotification(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.feed(t, `<message type="chat" from="lobby@muc.example.org/alice"><composing xmlns="http://jabber.org/protocol/chatstates"/></message>`)

	got := eventsOf[models.ChatEvent](h.events)
	require.Len(t, got, 1)
	require.Equal(t, &models.Chatstate{RoomJID: testRoom, Name: "alice", State: "composing"}, got[0].Chatstate)
	require.Empty(t, eventsOf[models.MessageEvent](h.events))
}
