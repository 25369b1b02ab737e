package utils

import (
	"strings"
	"unicode/utf8"
)

const maxResourceBytes = 1023

// ValidateNick checks a room nickname against the resourcepart limits.
func ValidateNick(nick string) error {
	if strings.TrimSpace(nick) == "" {
		return ValidationError("nickname must not be empty")
	}
	if len(nick) > maxResourceBytes {
		return ValidationError("nickname too long")
	}
	if !utf8.ValidString(nick) {
		return ValidationError("nickname is not valid UTF-8")
	}
	return nil
}

// ValidateRoomAddress performs the cheap structural checks on a bare room
// address before it is handed to the JID parser.
func ValidateRoomAddress(addr string) error {
	if addr == "" {
		return ValidationError("room address must not be empty")
	}
	at := strings.IndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 {
		return ValidationError("room address must be of the form room@service")
	}
	if strings.ContainsRune(addr, '/') {
		return ValidationError("room address must be bare")
	}
	return nil
}
