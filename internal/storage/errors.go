package storage

import "tavern/internal/utils"

var (
	ErrNoRows      = utils.NewTavernError("no rows in result set")
	ErrQueueFull   = utils.NewTavernError("write queue full")
	ErrInvalidPath = utils.ConfigError("invalid history database path")
)
