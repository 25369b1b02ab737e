// Package protocol turns XMPP stanzas into typed records and builds the
// outbound requests the client sends.
package protocol

const (
	NSClient      = "jabber:client"
	NSMUC         = "http://jabber.org/protocol/muc"
	NSMUCUser     = "http://jabber.org/protocol/muc#user"
	NSMUCAdmin    = "http://jabber.org/protocol/muc#admin"
	NSDiscoInfo   = "http://jabber.org/protocol/disco#info"
	NSDiscoItems  = "http://jabber.org/protocol/disco#items"
	NSRoster      = "jabber:iq:roster"
	NSVersion     = "jabber:iq:version"
	NSPrivate     = "jabber:iq:private"
	NSBookmarks   = "storage:bookmarks"
	NSPrivacy     = "jabber:iq:privacy"
	NSDelay       = "urn:xmpp:delay"
	NSLegacyDelay = "jabber:x:delay"
	NSConference  = "jabber:x:conference"
	NSChatstates  = "http://jabber.org/protocol/chatstates"
	NSStanzas     = "urn:ietf:params:xml:ns:xmpp-stanzas"
)

// Stanza kinds as they appear on the wire.
const (
	KindIQ       = "iq"
	KindMessage  = "message"
	KindPresence = "presence"
)

// Request IDs the server echoes back. Responses are routed by namespace,
// not by id, so fixed values are fine.
const (
	IDResetIgnoreList  = "set1"
	IDRemoveIgnoreList = "remove1"
	IDGetIgnoreList    = "get1"
	IDActivateIgnore   = "set2"
	IDEditIgnoreList   = "edit1"
	IDDiscoInfo        = "disco3"
	IDKick             = "kick1"
	IDBan              = "ban1"
)
