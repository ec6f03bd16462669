package testutils

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"
)

// SetupTestLogger creates a new slog.Logger that writes to a bytes.Buffer and stdout,
// configured for DEBUG level. Returns the logger and the buffer.
func SetupTestLogger() (*slog.Logger, *bytes.Buffer) {
	var logBuf bytes.Buffer
	// Write to both buffer and stdout for easier debugging during test development
	handler := slog.NewTextHandler(io.MultiWriter(&logBuf, os.Stdout), &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler)
	return logger, &logBuf
}

// RequireRoot skips tests that open raw sockets or inject frames.
func RequireRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("raw sockets need root")
	}
}
