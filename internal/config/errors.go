package config

import "tavern/internal/utils"

var (
	ErrConfigNotFound = utils.ConfigError("config file not found")
	ErrInvalidConfig  = utils.ConfigError("invalid config")
)
