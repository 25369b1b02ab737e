package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Stanza is the common view the dispatcher matches handlers on.
type Stanza interface {
	Kind() string
	StanzaType() string
	StanzaID() string
	StanzaFrom() string
	// Namespaces lists the namespaces of the stanza's direct children.
	Namespaces() []string
}

type Empty struct{}

type Text struct {
	Value string `xml:",chardata"`
}

type MUCStatus struct {
	Code string `xml:"code,attr"`
}

type MUCActor struct {
	JID  string `xml:"jid,attr"`
	Nick string `xml:"nick,attr"`
}

// Name is the actor's nickname, or its address when the server only
// sent a jid.
func (a *MUCActor) Name() string {
	if a == nil {
		return ""
	}
	if a.Nick != "" {
		return a.Nick
	}
	return a.JID
}

type MUCItem struct {
	Affiliation string    `xml:"affiliation,attr"`
	Role        string    `xml:"role,attr"`
	JID         string    `xml:"jid,attr"`
	Nick        string    `xml:"nick,attr"`
	Reason      string    `xml:"reason"`
	Actor       *MUCActor `xml:"actor"`
}

type MUCContinue struct {
	Thread string `xml:"thread,attr"`
}

type MUCInvite struct {
	From     string       `xml:"from,attr"`
	To       string       `xml:"to,attr"`
	Reason   string       `xml:"reason"`
	Continue *MUCContinue `xml:"continue"`
}

// X is any <x/> extension child. Which fields are populated depends on
// its namespace.
type X struct {
	XMLName  xml.Name
	Items    []MUCItem   `xml:"item"`
	Statuses []MUCStatus `xml:"status"`
	Invite   *MUCInvite  `xml:"invite"`
	Password *Text       `xml:"password"`

	// jabber:x:conference
	JID          string `xml:"jid,attr"`
	Reason       string `xml:"reason,attr"`
	PasswordAttr string `xml:"password,attr"`
	Thread       string `xml:"thread,attr"`

	// jabber:x:delay
	Stamp string `xml:"stamp,attr"`
}

type Presence struct {
	XMLName xml.Name     `xml:"presence"`
	ID      string       `xml:"id,attr"`
	From    string       `xml:"from,attr"`
	To      string       `xml:"to,attr"`
	Type    string       `xml:"type,attr"`
	Show    string       `xml:"show"`
	Status  string       `xml:"status"`
	X       []X          `xml:"x"`
	Error   *StanzaError `xml:"error"`
}

func (p *Presence) Kind() string       { return KindPresence }
func (p *Presence) StanzaType() string { return p.Type }
func (p *Presence) StanzaID() string   { return p.ID }
func (p *Presence) StanzaFrom() string { return p.From }
func (p *Presence) Namespaces() []string {
	return xNamespaces(p.X)
}

// MUC returns the first extension in any MUC namespace.
func (p *Presence) MUC() *X {
	for i := range p.X {
		if strings.HasPrefix(p.X[i].XMLName.Space, NSMUC) {
			return &p.X[i]
		}
	}
	return nil
}

// Item is the first MUC <item/>, or an empty one.
func (p *Presence) Item() MUCItem {
	if x := p.MUC(); x != nil && len(x.Items) > 0 {
		return x.Items[0]
	}
	return MUCItem{}
}

func (p *Presence) StatusCodes() []string {
	var codes []string
	for _, x := range p.X {
		if !strings.HasPrefix(x.XMLName.Space, NSMUC) {
			continue
		}
		for _, s := range x.Statuses {
			codes = append(codes, s.Code)
		}
	}
	return codes
}

func (p *Presence) HasStatus(code string) bool {
	for _, c := range p.StatusCodes() {
		if c == code {
			return true
		}
	}
	return false
}

// FirstStatusCode is the code of the first MUC status element.
func (p *Presence) FirstStatusCode() string {
	codes := p.StatusCodes()
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}

type Delay struct {
	From  string `xml:"from,attr"`
	Stamp string `xml:"stamp,attr"`
}

type Message struct {
	XMLName xml.Name     `xml:"message"`
	ID      string       `xml:"id,attr"`
	From    string       `xml:"from,attr"`
	To      string       `xml:"to,attr"`
	Type    string       `xml:"type,attr"`
	Subject *Text        `xml:"subject"`
	Body    *Text        `xml:"body"`
	Thread  string       `xml:"thread"`
	Error   *StanzaError `xml:"error"`
	Delay   *Delay       `xml:"urn:xmpp:delay delay"`
	X       []X          `xml:"x"`

	Active    *Empty `xml:"http://jabber.org/protocol/chatstates active"`
	Composing *Empty `xml:"http://jabber.org/protocol/chatstates composing"`
	Paused    *Empty `xml:"http://jabber.org/protocol/chatstates paused"`
	Inactive  *Empty `xml:"http://jabber.org/protocol/chatstates inactive"`
	Gone      *Empty `xml:"http://jabber.org/protocol/chatstates gone"`
}

func (m *Message) Kind() string       { return KindMessage }
func (m *Message) StanzaType() string { return m.Type }
func (m *Message) StanzaID() string   { return m.ID }
func (m *Message) StanzaFrom() string { return m.From }
func (m *Message) Namespaces() []string {
	ns := xNamespaces(m.X)
	if m.Delay != nil {
		ns = append(ns, NSDelay)
	}
	if m.Chatstate() != "" {
		ns = append(ns, NSChatstates)
	}
	return ns
}

func (m *Message) HasSubject() bool { return m.Subject != nil }
func (m *Message) HasBody() bool    { return m.Body != nil }

func (m *Message) SubjectText() string {
	if m.Subject == nil {
		return ""
	}
	return m.Subject.Value
}

func (m *Message) BodyText() string {
	if m.Body == nil {
		return ""
	}
	return m.Body.Value
}

// Chatstate names the XEP-0085 notification carried by the message, if
// any. "active" is not reported.
func (m *Message) Chatstate() string {
	switch {
	case m.Composing != nil:
		return "composing"
	case m.Paused != nil:
		return "paused"
	case m.Inactive != nil:
		return "inactive"
	case m.Gone != nil:
		return "gone"
	}
	return ""
}

func (m *Message) ext(ns string) *X {
	for i := range m.X {
		if m.X[i].XMLName.Space == ns {
			return &m.X[i]
		}
	}
	return nil
}

// MediatedInvite returns the muc#user invite and the room password that
// came with it.
func (m *Message) MediatedInvite() (*MUCInvite, string) {
	x := m.ext(NSMUCUser)
	if x == nil || x.Invite == nil {
		return nil, ""
	}
	pw := ""
	if x.Password != nil {
		pw = x.Password.Value
	}
	return x.Invite, pw
}

// DirectInvite returns the XEP-0249 invitation, if any.
func (m *Message) DirectInvite() *X {
	return m.ext(NSConference)
}

// DelayStamp prefers the XEP-0203 delay over the legacy XEP-0091 form.
func (m *Message) DelayStamp() string {
	if m.Delay != nil {
		return m.Delay.Stamp
	}
	if x := m.ext(NSLegacyDelay); x != nil {
		return x.Stamp
	}
	return ""
}

type Identity struct {
	Category string `xml:"category,attr"`
	Type     string `xml:"type,attr"`
	Name     string `xml:"name,attr"`
}

type Feature struct {
	Var string `xml:"var,attr"`
}

// Item covers disco#items and roster items.
type Item struct {
	JID          string `xml:"jid,attr"`
	Name         string `xml:"name,attr"`
	Subscription string `xml:"subscription,attr"`
}

type PrivacyItem struct {
	Type   string `xml:"type,attr"`
	Value  string `xml:"value,attr"`
	Action string `xml:"action,attr"`
	Order  string `xml:"order,attr"`
}

type PrivacyListElement struct {
	Name  string        `xml:"name,attr"`
	Items []PrivacyItem `xml:"item"`
}

type Conference struct {
	JID      string `xml:"jid,attr"`
	Name     string `xml:"name,attr"`
	Autojoin string `xml:"autojoin,attr"`
	Nick     string `xml:"nick"`
	Password string `xml:"password"`
}

// AutojoinSet reports a truthy autojoin attribute.
func (c Conference) AutojoinSet() bool {
	switch strings.ToLower(strings.TrimSpace(c.Autojoin)) {
	case "", "false", "0":
		return false
	}
	return true
}

type Storage struct {
	Conferences []Conference `xml:"conference"`
}

// Query is the payload of every IQ the client handles.
type Query struct {
	XMLName    xml.Name
	Identities []Identity           `xml:"identity"`
	Features   []Feature            `xml:"feature"`
	Items      []Item               `xml:"item"`
	Lists      []PrivacyListElement `xml:"list"`
	Storage    *Storage             `xml:"storage:bookmarks storage"`
	Name       string               `xml:"name"`
	Version    string               `xml:"version"`
	OS         string               `xml:"os"`
}

// List returns the named privacy list, if present.
func (q *Query) List(name string) *PrivacyListElement {
	for i := range q.Lists {
		if q.Lists[i].Name == name {
			return &q.Lists[i]
		}
	}
	return nil
}

func (q *Query) HasIdentity(category string) bool {
	for _, id := range q.Identities {
		if id.Category == category {
			return true
		}
	}
	return false
}

type IQ struct {
	XMLName xml.Name     `xml:"iq"`
	ID      string       `xml:"id,attr"`
	From    string       `xml:"from,attr"`
	To      string       `xml:"to,attr"`
	Type    string       `xml:"type,attr"`
	Query   *Query       `xml:"query"`
	Error   *StanzaError `xml:"error"`
}

func (iq *IQ) Kind() string       { return KindIQ }
func (iq *IQ) StanzaType() string { return iq.Type }
func (iq *IQ) StanzaID() string   { return iq.ID }
func (iq *IQ) StanzaFrom() string { return iq.From }
func (iq *IQ) Namespaces() []string {
	if iq.Query == nil {
		return nil
	}
	return []string{iq.Query.XMLName.Space}
}

func xNamespaces(xs []X) []string {
	ns := make([]string, 0, len(xs))
	for _, x := range xs {
		ns = append(ns, x.XMLName.Space)
	}
	return ns
}

// Decode reads the next top-level stanza from d. Unknown elements are
// skipped and reported as ErrUnknownStanza.
func Decode(d *xml.Decoder) (Stanza, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoStanza
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		return decodeElement(d, &start)
	}
}

func decodeElement(d *xml.Decoder, start *xml.StartElement) (Stanza, error) {
	var st Stanza
	switch start.Name.Local {
	case KindPresence:
		st = &Presence{}
	case KindMessage:
		st = &Message{}
	case KindIQ:
		st = &IQ{}
	default:
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return nil, ErrUnknownStanza.WithDetails(start.Name.Local)
	}
	if err := d.DecodeElement(st, start); err != nil {
		return nil, err
	}
	return st, nil
}

// Parse decodes a single stanza from raw XML.
func Parse(raw []byte) (Stanza, error) {
	return Decode(xml.NewDecoder(bytes.NewReader(raw)))
}
