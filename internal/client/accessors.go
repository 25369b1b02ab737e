package client

import "tavern/internal/models"

func (cli *Client) Status() models.Status {
	return cli.Session.Status()
}

func (cli *Client) Connected() bool {
	return cli.Session.Status().Usable()
}

func (cli *Client) Nick() string {
	return cli.Session.UserNick()
}

func (cli *Client) JID() string {
	return cli.Session.UserJID()
}

// RoomNick is our nickname in room, falling back to the account nick
// before the room has confirmed it.
func (cli *Client) RoomNick(room string) string {
	if snap, ok := cli.Session.Room(room); ok && snap.HasSelf {
		return snap.Self.Nick
	}
	return cli.Session.UserNick()
}

func (cli *Client) Rooms() []RoomSnapshot {
	return cli.Session.Rooms()
}

func (cli *Client) Room(jid string) (RoomSnapshot, bool) {
	return cli.Session.Room(jid)
}
