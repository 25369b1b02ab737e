package models

import "strings"

// Status is the connection status reported by the transport.
type Status int

const (
	StatusError Status = iota
	StatusConnecting
	StatusConnFail
	StatusAuthenticating
	StatusAuthFail
	StatusConnected
	StatusDisconnected
	StatusDisconnecting
	StatusAttached
)

var statusNames = map[Status]string{
	StatusError:          "error",
	StatusConnecting:     "connecting",
	StatusConnFail:       "connfail",
	StatusAuthenticating: "authenticating",
	StatusAuthFail:       "authfail",
	StatusConnected:      "connected",
	StatusDisconnected:   "disconnected",
	StatusDisconnecting:  "disconnecting",
	StatusAttached:       "attached",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for st, n := range statusNames {
		if n == name {
			*s = st
			return nil
		}
	}
	return ErrInvalidStatus.WithDetails(string(b))
}

// Usable reports whether stanzas may be sent in this state.
func (s Status) Usable() bool {
	return s == StatusConnected || s == StatusAttached
}
