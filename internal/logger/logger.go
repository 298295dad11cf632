// Package logger builds the contextualized logger shared by the crawler components.
package logger

import (
	"os"

	"github.com/bool64/ctxd"
	"github.com/bool64/zapctxd"
)

// NewLogger initiates a new contextualized zap logger.
//
// Log messages are written to stderr when no output is configured, the record stream is never used for logging.
func NewLogger(cfg Config) *zapctxd.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	return zapctxd.New(zapctxd.Config{
		Level:   cfg.Level,
		DevMode: true,
		FieldNames: ctxd.FieldNames{
			Timestamp: "timestamp",
			Message:   "message",
		},
		Output:    out,
		StripTime: cfg.StripTime,
	})
}
