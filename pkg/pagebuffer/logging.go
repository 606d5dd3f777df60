package pagebuffer

import (
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pagebuffer/pkg/logging"
)

// Logger is the zerolog logger this package writes its debug/error lines
// through. It is a type alias for zerolog.Logger, so any zerolog.Logger
// (for example one built by pkg/logging.NewLogger) can be passed as
// Config.Logger directly.
type Logger = zerolog.Logger

// NewLogger returns a Logger tagged component=pagebuffer, built the way
// the rest of this module builds component loggers (pkg/logging.NewLogger).
func NewLogger() Logger {
	return logging.NewLogger("pagebuffer")
}
