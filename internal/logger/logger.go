// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// stderr is where log lines go besides the optional file; stdout carries probe outcomes.
var stderr io.Writer = os.Stderr

// New creates a logger that writes to stderr and, when logFilePath is set, to a log file,
// supporting log levels.
func New(logFilePath string, logLevelStr string) (*slog.Logger, func(), error) {
	out := stderr
	closeFn := func() {}
	if logFilePath != "" {
		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
		}
		out = io.MultiWriter(stderr, logFile)
		closeFn = func() { _ = logFile.Close() }
	}

	level, ok := ParseLevel(logLevelStr)

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006/01/02 15:04:05")) // Matches log.LstdFlags format
				}
			}
			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(out, opts))
	if !ok {
		logger.Warn("Invalid log level specified, defaulting to INFO.", "provided_level", logLevelStr, "default_level", "INFO")
	}

	return logger, closeFn, nil
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog.Level.
// Anything else yields INFO and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
