package transport

import (
	"log/slog"

	"tavern/internal/utils"
)

func discardLogger() *slog.Logger {
	return utils.NewLogger(false)
}
