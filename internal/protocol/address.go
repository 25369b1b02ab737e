package protocol

import (
	"strings"

	"mellium.im/xmpp/jid"
)

// The helpers below work on raw address strings as they arrive in
// stanza attributes. Addresses that pass PRECIS are normalised through
// mellium's jid package so room keys compare equal regardless of case;
// anything else falls back to plain splitting.

func split(addr string) (local, domain, resource string) {
	rest := addr
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		resource = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '@'); i >= 0 {
		local = rest[:i]
		rest = rest[i+1:]
	}
	return local, rest, resource
}

// Bare strips the resource part.
func Bare(addr string) string {
	if j, err := jid.Parse(addr); err == nil {
		return j.Bare().String()
	}
	local, domain, _ := split(addr)
	if local == "" {
		return domain
	}
	return local + "@" + domain
}

// Resource returns the part after the first slash. Resources are not
// case mapped.
func Resource(addr string) string {
	_, _, resource := split(addr)
	return resource
}

func Node(addr string) string {
	if j, err := jid.Parse(addr); err == nil {
		return j.Localpart()
	}
	local, _, _ := split(addr)
	return local
}

func Domain(addr string) string {
	if j, err := jid.Parse(addr); err == nil {
		return j.Domainpart()
	}
	_, domain, _ := split(addr)
	return domain
}

// IsDomain reports whether addr is a bare server address, as used for
// admin and server broadcasts. A missing sender counts as the server.
func IsDomain(addr string) bool {
	local, _, resource := split(addr)
	return local == "" && resource == ""
}

// WithResource joins a bare address and a resource.
func WithResource(bare, resource string) string {
	return Bare(bare) + "/" + resource
}

// ParseAddress parses addr into a mellium JID. The empty string yields
// the zero JID so optional from/to attributes can be left unset.
func ParseAddress(addr string) (jid.JID, error) {
	if addr == "" {
		return jid.JID{}, nil
	}
	j, err := jid.Parse(addr)
	if err != nil {
		return jid.JID{}, ErrBadAddress.WithDetailsf("%q: %v", addr, err)
	}
	return j, nil
}

var nodeEscaper = strings.NewReplacer(
	`\`, `\5c`,
	` `, `\20`,
	`"`, `\22`,
	`&`, `\26`,
	`'`, `\27`,
	`/`, `\2f`,
	`:`, `\3a`,
	`<`, `\3c`,
	`>`, `\3e`,
	`@`, `\40`,
)

var nodeUnescaper = strings.NewReplacer(
	`\20`, ` `,
	`\22`, `"`,
	`\26`, `&`,
	`\27`, `'`,
	`\2f`, `/`,
	`\3a`, `:`,
	`\3c`, `<`,
	`\3e`, `>`,
	`\40`, `@`,
	`\5c`, `\`,
)

// EscapeNode applies XEP-0106 escaping to a localpart.
func EscapeNode(s string) string {
	return nodeEscaper.Replace(s)
}

func UnescapeNode(s string) string {
	return nodeUnescaper.Replace(s)
}

// EscapeJID escapes the localpart of addr. Nicknames are opaque
// resourceparts and go out as typed.
func EscapeJID(addr string) string {
	local, domain, resource := split(addr)
	out := domain
	if local != "" {
		out = EscapeNode(local) + "@" + domain
	}
	if resource != "" {
		out += "/" + resource
	}
	return out
}

// UnescapeJID unescapes the localpart of addr. The resource is left
// alone so an occupant's nickname round-trips unchanged.
func UnescapeJID(addr string) string {
	local, domain, resource := split(addr)
	out := domain
	if local != "" {
		out = UnescapeNode(local) + "@" + domain
	}
	if resource != "" {
		out += "/" + resource
	}
	return out
}
