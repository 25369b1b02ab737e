package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"tavern/internal/models"
	"tavern/internal/protocol"
	"tavern/internal/storage"
)

// Actions is the part of the client the input line drives.
type Actions interface {
	JoinRoom(ctx context.Context, room, password string) error
	LeaveRoom(ctx context.Context, room string) error
	SendMessage(ctx context.Context, to, text, kind string) (bool, error)
	UserAction(ctx context.Context, room, userJID string, action models.PresenceAction, reason string) (bool, error)
	SetSubject(ctx context.Context, room, subject string) error
	IgnoreUnignore(ctx context.Context, userJID string) error
}

type History interface {
	LatestMessages(ctx context.Context, roomJID string, limit int) ([]models.StoredMessage, error)
	LastSeen(ctx context.Context, roomJID, nick string) (storage.Sighting, error)
}

const defaultHistoryLines = 20

type Command struct {
	Name string
	Args []string
	// Rest is the text after the first len(Args) words.
	Rest string
}

// commandArgs gives, per command, how many leading words are split off
// as Args, how many of those are required and whether the remaining
// text is required.
var commandArgs = map[string]struct {
	words, required int
	rest            bool
}{
	"join":    {2, 1, false},
	"leave":   {0, 0, false},
	"msg":     {1, 1, true},
	"kick":    {1, 1, false},
	"ban":     {1, 1, false},
	"topic":   {0, 0, false},
	"ignore":  {1, 1, false},
	"seen":    {1, 1, false},
	"history": {1, 0, false},
	"quit":    {0, 0, false},
}

var commandUsage = map[string]string{
	"join":    "/join room@service [password]",
	"msg":     "/msg nick text",
	"kick":    "/kick nick [reason]",
	"ban":     "/ban nick [reason]",
	"ignore":  "/ignore jid",
	"seen":    "/seen nick",
	"history": "/history [lines]",
}

// ParseCommand splits an input line. A line without a leading slash, or
// starting with "//", is a "say" command carrying the text.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "/") || strings.HasPrefix(line, "//") {
		text := strings.TrimPrefix(line, "/")
		if strings.TrimSpace(text) == "" {
			return Command{}, ErrUsage.WithDetails("empty message")
		}
		return Command{Name: "say", Rest: text}, nil
	}
	if strings.HasPrefix(line, "/me ") {
		return Command{Name: "say", Rest: line}, nil
	}

	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	name = strings.ToLower(name)
	arity, ok := commandArgs[name]
	if !ok {
		return Command{}, ErrUnknownCommand.WithDetails("/" + name)
	}

	cmd := Command{Name: name}
	rest = strings.TrimSpace(rest)
	for i := 0; i < arity.words && rest != ""; i++ {
		var word string
		word, rest, _ = strings.Cut(rest, " ")
		cmd.Args = append(cmd.Args, word)
		rest = strings.TrimSpace(rest)
	}
	cmd.Rest = rest
	if len(cmd.Args) < arity.required || (arity.rest && cmd.Rest == "") {
		return Command{}, ErrUsage.WithDetails(commandUsage[name])
	}
	return cmd, nil
}

// Result tells the view what changed after a command ran.
type Result struct {
	// Buffer receives Lines and is opened and selected when Focus is set.
	Buffer string
	Lines  []string
	Focus  bool
	Close  bool
	Quit   bool
}

type Commander struct {
	actions Actions
	history History
	self    func(room string) string
}

// NewCommander builds a command runner. history may be nil; self
// returns our nickname in a room.
func NewCommander(actions Actions, history History, self func(room string) string) *Commander {
	return &Commander{actions: actions, history: history, self: self}
}

func isPrivate(buffer string) bool {
	return protocol.Resource(buffer) != ""
}

// Execute runs cmd with current as the selected buffer.
func (c *Commander) Execute(ctx context.Context, current string, cmd Command) (Result, error) {
	room := protocol.Bare(current)
	needRoom := func() error {
		if current == consoleKey {
			return ErrNoRoom.WithDetails("/" + cmd.Name)
		}
		return nil
	}

	switch cmd.Name {
	case "quit":
		return Result{Quit: true}, nil

	case "join":
		password := ""
		if len(cmd.Args) > 1 {
			password = cmd.Args[1]
		}
		if err := c.actions.JoinRoom(ctx, cmd.Args[0], password); err != nil {
			return Result{}, err
		}
		return Result{Buffer: protocol.Bare(cmd.Args[0]), Focus: true}, nil

	case "ignore":
		if err := c.actions.IgnoreUnignore(ctx, cmd.Args[0]); err != nil {
			return Result{}, err
		}
		return Result{Buffer: consoleKey, Lines: []string{"-!- Toggled ignore for " + cmd.Args[0]}}, nil
	}

	if err := needRoom(); err != nil {
		return Result{}, err
	}

	switch cmd.Name {
	case "say":
		kind := models.MessageTypeGroupchat
		to := room
		if isPrivate(current) {
			kind, to = models.MessageTypeChat, current
		}
		sent, err := c.actions.SendMessage(ctx, to, cmd.Rest, kind)
		if err != nil || !sent || kind == models.MessageTypeGroupchat {
			return Result{}, err
		}
		// the server echoes groupchat messages but not private ones
		return Result{Buffer: current, Lines: []string{c.echo(room, cmd.Rest)}}, nil

	case "msg":
		to := protocol.WithResource(room, cmd.Args[0])
		sent, err := c.actions.SendMessage(ctx, to, cmd.Rest, models.MessageTypeChat)
		if err != nil || !sent {
			return Result{}, err
		}
		return Result{Buffer: to, Lines: []string{c.echo(room, cmd.Rest)}, Focus: true}, nil

	case "leave":
		if isPrivate(current) {
			return Result{Buffer: current, Close: true}, nil
		}
		return Result{}, c.actions.LeaveRoom(ctx, room)

	case "kick", "ban":
		action := models.ActionKick
		if cmd.Name == "ban" {
			action = models.ActionBan
		}
		_, err := c.actions.UserAction(ctx, room, protocol.WithResource(room, cmd.Args[0]), action, cmd.Rest)
		return Result{}, err

	case "topic":
		return Result{}, c.actions.SetSubject(ctx, room, cmd.Rest)

	case "seen":
		if c.history == nil {
			return Result{}, ErrNoHistory
		}
		sg, err := c.history.LastSeen(ctx, room, cmd.Args[0])
		if errors.Is(err, storage.ErrNoRows) {
			return Result{Buffer: current, Lines: []string{"-!- " + cmd.Args[0] + " has not been seen here"}}, nil
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Buffer: current, Lines: []string{FormatSighting(sg)}}, nil

	case "history":
		if c.history == nil {
			return Result{}, ErrNoHistory
		}
		limit := defaultHistoryLines
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n <= 0 {
				return Result{}, ErrUsage.WithDetails(commandUsage["history"])
			}
			limit = n
		}
		msgs, err := c.history.LatestMessages(ctx, current, limit)
		if err != nil {
			return Result{}, err
		}
		lines := make([]string, 0, len(msgs)+2)
		lines = append(lines, "-!- History:")
		for _, m := range msgs {
			lines = append(lines, FormatStored(m))
		}
		lines = append(lines, "-!- End of history")
		return Result{Buffer: current, Lines: lines}, nil
	}
	return Result{}, ErrUnknownCommand.WithDetails("/" + cmd.Name)
}

func (c *Commander) echo(room, text string) string {
	me := ""
	if c.self != nil {
		me = c.self(room)
	}
	return formatLine(me, text, models.MessageTypeChat, timestamp(time.Time{}, timeNow()))
}
