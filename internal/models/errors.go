package models

import "tavern/internal/utils"

var (
	ErrInvalidStatus = utils.ValidationError("invalid connection status")
)
