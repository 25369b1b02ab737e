package client

import (
	"tavern/internal/transport"
	"tavern/internal/utils"
)

var (
	ErrRoomNotTracked      = utils.NewTavernError("room not tracked")
	ErrInvalidTransition   = utils.NewTavernError("invalid connection status transition")
	ErrNotConnected        = transport.ErrNotConnected
	ErrCredentialsRequired = utils.NewTavernError("credentials required")
	ErrInvalidMessageKind  = utils.ValidationError("message kind must be groupchat or chat")
	ErrAlreadyConnected    = utils.NewTavernError("already connected")
)
