package client

import (
	"tavern/internal/protocol"
	"tavern/internal/utils"
)

func loginModeFor(c Credentials) loginMode {
	switch {
	case c.JID != "" && c.Password != "":
		return loginAuthenticated
	case c.Nick != "":
		return loginAnonymous
	default:
		return loginPrompt
	}
}

func validateCredentials(c Credentials, mode loginMode) error {
	switch mode {
	case loginAuthenticated:
		if protocol.Node(c.JID) == "" {
			return utils.ValidationError("address must include a user part").WithDetails(c.JID)
		}
		if _, err := protocol.ParseAddress(c.JID); err != nil {
			return err
		}
		if c.Nick != "" {
			return utils.ValidateNick(c.Nick)
		}
	case loginAnonymous:
		if c.JID == "" {
			return utils.ValidationError("anonymous login needs a server address")
		}
		return utils.ValidateNick(c.Nick)
	}
	return nil
}

// nickFor picks the room nickname: the configured one, else the user
// part of the address.
func nickFor(c Credentials) string {
	if c.Nick != "" {
		return c.Nick
	}
	return protocol.Node(c.JID)
}
