package protocol

import (
	"encoding/xml"
	"strings"
)

type ErrorChild struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// StanzaError is an <error/> child of any stanza.
type StanzaError struct {
	Type     string       `xml:"type,attr"`
	Code     string       `xml:"code,attr"`
	Children []ErrorChild `xml:",any"`
}

// Condition is the lowercased tag name of the first child element.
func (e *StanzaError) Condition() string {
	if e == nil || len(e.Children) == 0 {
		return ""
	}
	return strings.ToLower(e.Children[0].XMLName.Local)
}

func (e *StanzaError) Has(condition string) bool {
	if e == nil {
		return false
	}
	for _, c := range e.Children {
		if c.XMLName.Local == condition {
			return true
		}
	}
	return false
}

// Text returns the descriptive <text/> child and whether one was present.
func (e *StanzaError) Text() (string, bool) {
	if e == nil {
		return "", false
	}
	for _, c := range e.Children {
		if c.XMLName.Local == "text" {
			return c.Text, true
		}
	}
	return "", false
}

// IsItemNotFound matches the reply to a request for a privacy list the
// server does not have.
func (e *StanzaError) IsItemNotFound() bool {
	if e == nil {
		return false
	}
	return e.Has("item-not-found") || e.Code == "404"
}
