package ui

import "tavern/internal/utils"

var (
	ErrUnknownCommand = utils.ValidationError("unknown command")
	ErrUsage          = utils.ValidationError("usage")
	ErrNoRoom         = utils.ValidationError("no room selected")
	ErrNoHistory      = utils.NewTavernError("history is disabled")
)
