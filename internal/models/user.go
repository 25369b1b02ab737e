package models

// User is the local account. JID stays empty after an anonymous login
// until the connection assigns one.
type User struct {
	JID  string
	Nick string

	privacyLists map[string]*PrivacyList
}

func NewUser(jid, nick string) *User {
	return &User{
		JID:          jid,
		Nick:         nick,
		privacyLists: make(map[string]*PrivacyList),
	}
}

func (u *User) IsAnonymous() bool {
	return u.JID == ""
}

// PrivacyList returns the named list, creating an empty one on first use.
func (u *User) PrivacyList(name string) *PrivacyList {
	if l, ok := u.privacyLists[name]; ok {
		return l
	}
	l := NewPrivacyList(name)
	u.privacyLists[name] = l
	return l
}

func (u *User) IsInPrivacyList(name, jid string) bool {
	l, ok := u.privacyLists[name]
	return ok && l.Contains(jid)
}

// TogglePrivacyList flips membership of jid in the named list.
func (u *User) TogglePrivacyList(name, jid string) bool {
	return u.PrivacyList(name).Toggle(jid)
}
