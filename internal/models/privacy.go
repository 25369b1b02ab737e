package models

import "slices"

// IgnoreListName is the server-side privacy list used for ignoring users.
const IgnoreListName = "ignore"

// PrivacyList is an ordered list of blocked addresses. The server copy is
// always replaced whole, never patched.
type PrivacyList struct {
	Name  string
	items []string
}

func NewPrivacyList(name string) *PrivacyList {
	return &PrivacyList{Name: name}
}

// Add appends jid unless it is already present.
func (p *PrivacyList) Add(jid string) bool {
	if p.Contains(jid) {
		return false
	}
	p.items = append(p.items, jid)
	return true
}

func (p *PrivacyList) Remove(jid string) bool {
	i := slices.Index(p.items, jid)
	if i < 0 {
		return false
	}
	p.items = slices.Delete(p.items, i, i+1)
	return true
}

// Toggle removes jid if present and adds it otherwise. It reports whether
// jid is in the list afterwards.
func (p *PrivacyList) Toggle(jid string) bool {
	if p.Remove(jid) {
		return false
	}
	p.items = append(p.items, jid)
	return true
}

func (p *PrivacyList) Contains(jid string) bool {
	return slices.Contains(p.items, jid)
}

func (p *PrivacyList) Items() []string {
	return slices.Clone(p.items)
}

func (p *PrivacyList) Len() int {
	return len(p.items)
}
