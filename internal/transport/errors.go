package transport

import "tavern/internal/utils"

var (
	ErrNotConnected         = utils.NewTavernError("not connected")
	ErrConnFail             = utils.NewTavernError("connection failed")
	ErrAuthFail             = utils.NewTavernError("authentication failed")
	ErrAnonymousUnsupported = utils.ValidationError("anonymous login needs SASL ANONYMOUS, which is not available")
)
