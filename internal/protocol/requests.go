package protocol

import (
	"encoding/xml"
	"strconv"

	"github.com/google/uuid"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"
)

// OutIQ is an outbound IQ. Payload must carry a namespaced XMLName so it
// marshals as the IQ's child element.
type OutIQ struct {
	stanza.IQ
	Payload any
}

type OutPresence struct {
	stanza.Presence
	Show     string   `xml:"show,omitempty"`
	Status   string   `xml:"status,omitempty"`
	Priority int      `xml:"priority,omitempty"`
	MUC      *MUCJoin `xml:",omitempty"`
}

type OutMessage struct {
	stanza.Message
	Subject *string `xml:"subject"`
	Body    string  `xml:"body,omitempty"`
}

type MUCJoin struct {
	XMLName  xml.Name `xml:"http://jabber.org/protocol/muc x"`
	Password string   `xml:"password,omitempty"`
}

type RosterQuery struct {
	XMLName xml.Name `xml:"jabber:iq:roster query"`
}

type DiscoItemsQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#items query"`
}

type DiscoInfoQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#info query"`
}

type VersionQuery struct {
	XMLName xml.Name `xml:"jabber:iq:version query"`
	Name    string   `xml:"name,omitempty"`
	Version string   `xml:"version,omitempty"`
	OS      string   `xml:"os,omitempty"`
}

type BookmarkStorage struct {
	XMLName xml.Name `xml:"storage:bookmarks storage"`
}

type PrivateQuery struct {
	XMLName xml.Name `xml:"jabber:iq:private query"`
	Storage BookmarkStorage
}

type PrivacyActive struct {
	Name string `xml:"name,attr"`
}

type PrivacyItemOut struct {
	Type    string `xml:"type,attr,omitempty"`
	Value   string `xml:"value,attr,omitempty"`
	Action  string `xml:"action,attr"`
	Order   string `xml:"order,attr"`
	Message *Empty `xml:"message"`
}

type PrivacyListOut struct {
	Name  string           `xml:"name,attr"`
	Items []PrivacyItemOut `xml:"item"`
}

type PrivacyQuery struct {
	XMLName xml.Name        `xml:"jabber:iq:privacy query"`
	Active  *PrivacyActive  `xml:"active"`
	List    *PrivacyListOut `xml:"list"`
}

type MUCAdminItem struct {
	Nick        string `xml:"nick,attr"`
	Role        string `xml:"role,attr,omitempty"`
	Affiliation string `xml:"affiliation,attr,omitempty"`
	Reason      string `xml:"reason"`
}

type MUCAdminQuery struct {
	XMLName xml.Name     `xml:"http://jabber.org/protocol/muc#admin query"`
	Item    MUCAdminItem `xml:"item"`
}

func newIQ(typ stanza.IQType, id string, from, to jid.JID, payload any) OutIQ {
	if id == "" {
		id = uuid.NewString()
	}
	return OutIQ{
		IQ: stanza.IQ{
			ID:   id,
			Type: typ,
			From: from,
			To:   to,
		},
		Payload: payload,
	}
}

func parsePair(from, to string) (jid.JID, jid.JID, error) {
	f, err := ParseAddress(from)
	if err != nil {
		return jid.JID{}, jid.JID{}, err
	}
	t, err := ParseAddress(to)
	if err != nil {
		return jid.JID{}, jid.JID{}, err
	}
	return f, t, nil
}

// VersionReply answers a jabber:iq:version request.
func VersionReply(req *IQ, name, version, os string) (OutIQ, error) {
	from, to, err := parsePair(req.To, req.From)
	if err != nil {
		return OutIQ{}, err
	}
	return newIQ(stanza.ResultIQ, req.ID, from, to, VersionQuery{Name: name, Version: version, OS: os}), nil
}

func RosterRequest() OutIQ {
	return newIQ(stanza.GetIQ, "", jid.JID{}, jid.JID{}, RosterQuery{})
}

func ServicesRequest() OutIQ {
	return newIQ(stanza.GetIQ, "", jid.JID{}, jid.JID{}, DiscoItemsQuery{})
}

func BookmarksRequest() OutIQ {
	return newIQ(stanza.GetIQ, "", jid.JID{}, jid.JID{}, PrivateQuery{})
}

func DiscoInfoRequest(from, room string) (OutIQ, error) {
	f, t, err := parsePair(from, EscapeJID(room))
	if err != nil {
		return OutIQ{}, err
	}
	return newIQ(stanza.GetIQ, IDDiscoInfo, f, t, DiscoInfoQuery{}), nil
}

func privacyIQ(typ stanza.IQType, id, from string, q PrivacyQuery) (OutIQ, error) {
	f, err := ParseAddress(from)
	if err != nil {
		return OutIQ{}, err
	}
	return newIQ(typ, id, f, jid.JID{}, q), nil
}

// ResetIgnoreList replaces the ignore list with a single allow-all item.
func ResetIgnoreList(from, list string) (OutIQ, error) {
	return privacyIQ(stanza.SetIQ, IDResetIgnoreList, from, PrivacyQuery{
		List: &PrivacyListOut{Name: list, Items: []PrivacyItemOut{{Action: "allow", Order: "0"}}},
	})
}

// RemoveIgnoreList sends the list with no items, which deletes it.
func RemoveIgnoreList(from, list string) (OutIQ, error) {
	return privacyIQ(stanza.SetIQ, IDRemoveIgnoreList, from, PrivacyQuery{
		List: &PrivacyListOut{Name: list},
	})
}

func GetIgnoreList(from, list string) (OutIQ, error) {
	return privacyIQ(stanza.GetIQ, IDGetIgnoreList, from, PrivacyQuery{
		List: &PrivacyListOut{Name: list},
	})
}

func SetIgnoreListActive(from, list string) (OutIQ, error) {
	return privacyIQ(stanza.SetIQ, IDActivateIgnore, from, PrivacyQuery{
		Active: &PrivacyActive{Name: list},
	})
}

// UpdateIgnoreList uploads the whole list: one deny item per address, in
// order, blocking messages only. An empty list becomes a single allow.
func UpdateIgnoreList(from, list string, jids []string) (OutIQ, error) {
	items := make([]PrivacyItemOut, 0, len(jids))
	for i, j := range jids {
		items = append(items, PrivacyItemOut{
			Type:    "jid",
			Value:   EscapeJID(j),
			Action:  "deny",
			Order:   strconv.Itoa(i),
			Message: &Empty{},
		})
	}
	if len(items) == 0 {
		items = append(items, PrivacyItemOut{Action: "allow", Order: "0"})
	}
	return privacyIQ(stanza.SetIQ, IDEditIgnoreList, from, PrivacyQuery{
		List: &PrivacyListOut{Name: list, Items: items},
	})
}

// AdminItemRequest builds a muc#admin item change. role and affiliation
// are optional; unset ones are omitted.
func AdminItemRequest(id, from, room, nick, role, affiliation, reason string) (OutIQ, error) {
	f, t, err := parsePair(from, EscapeJID(room))
	if err != nil {
		return OutIQ{}, err
	}
	return newIQ(stanza.SetIQ, id, f, t, MUCAdminQuery{
		Item: MUCAdminItem{
			Nick:        nick,
			Role:        role,
			Affiliation: affiliation,
			Reason:      reason,
		},
	}), nil
}

// PresenceAttrs are the optional attributes of a plain presence.
type PresenceAttrs struct {
	To       string
	Type     string
	Show     string
	Status   string
	Priority int
}

func PresenceStanza(attrs PresenceAttrs) (OutPresence, error) {
	to, err := ParseAddress(attrs.To)
	if err != nil {
		return OutPresence{}, err
	}
	return OutPresence{
		Presence: stanza.Presence{To: to, Type: stanza.PresenceType(attrs.Type)},
		Show:     attrs.Show,
		Status:   attrs.Status,
		Priority: attrs.Priority,
	}, nil
}

// JoinPresence enters room under nick.
func JoinPresence(room, nick, password string) (OutPresence, error) {
	to, err := ParseAddress(EscapeJID(WithResource(room, nick)))
	if err != nil {
		return OutPresence{}, err
	}
	return OutPresence{
		Presence: stanza.Presence{ID: uuid.NewString(), To: to},
		MUC:      &MUCJoin{Password: password},
	}, nil
}

func LeavePresence(room, nick string) (OutPresence, error) {
	to, err := ParseAddress(EscapeJID(WithResource(room, nick)))
	if err != nil {
		return OutPresence{}, err
	}
	return OutPresence{
		Presence: stanza.Presence{ID: uuid.NewString(), To: to, Type: stanza.UnavailablePresence},
	}, nil
}

// ChatMessage addresses a room ("groupchat") or an occupant ("chat").
func ChatMessage(to, body, typ string) (OutMessage, error) {
	t, err := ParseAddress(EscapeJID(to))
	if err != nil {
		return OutMessage{}, err
	}
	return OutMessage{
		Message: stanza.Message{ID: uuid.NewString(), To: t, Type: stanza.MessageType(typ)},
		Body:    body,
	}, nil
}

// SubjectMessage sets the room topic. An empty subject clears it.
func SubjectMessage(room, subject string) (OutMessage, error) {
	t, err := ParseAddress(EscapeJID(room))
	if err != nil {
		return OutMessage{}, err
	}
	return OutMessage{
		Message: stanza.Message{ID: uuid.NewString(), To: t, Type: stanza.GroupChatMessage},
		Subject: &subject,
	}, nil
}
