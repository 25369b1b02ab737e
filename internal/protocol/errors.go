package protocol

import "tavern/internal/utils"

var (
	ErrUnknownStanza = utils.ProtocolError("unknown top-level element")
	ErrNoStanza      = utils.ProtocolError("no stanza in input")
	ErrBadAddress    = utils.ValidationError("invalid address")
)
