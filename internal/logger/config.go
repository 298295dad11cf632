package logger

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// Level is a log level.
type Level = zapcore.Level

const (
	// DebugLevel logs every visit and skip of the crawler.
	DebugLevel = zapcore.DebugLevel
	// InfoLevel logs visits, dedup skips and run milestones.
	InfoLevel = zapcore.InfoLevel
	// WarnLevel logs only the pages that could not be processed.
	WarnLevel = zapcore.WarnLevel
	// ErrorLevel is an error log level.
	ErrorLevel = zapcore.ErrorLevel
)

// Config is the configuration for the logger.
type Config struct {
	Output io.Writer
	Level  Level
	// StripTime disables time variance in logger.
	StripTime bool
}

// LevelFromVerbosity maps a verbosity count (the number of -v flags) to a log level.
//
// 0 is warnings only, 1 is info and anything above is debug.
func LevelFromVerbosity(verbosity int) Level {
	levels := []Level{WarnLevel, InfoLevel, DebugLevel}

	switch {
	case verbosity < 0:
		return levels[0]
	case verbosity >= len(levels):
		return levels[len(levels)-1]
	}

	return levels[verbosity]
}
