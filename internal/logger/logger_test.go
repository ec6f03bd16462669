package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = original })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %t; want %v, %t", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNew_WritesToFileAndStderr(t *testing.T) {
	buf := captureStderr(t)
	path := filepath.Join(t.TempDir(), "hostprobe.log")

	logger, closeFn, err := New(path, "DEBUG")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Debug("Probe finished.", "outcome", "UP")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	for name, out := range map[string]string{"file": string(data), "stderr": buf.String()} {
		if !strings.Contains(out, "Probe finished.") || !strings.Contains(out, "outcome=UP") {
			t.Errorf("%s output missing record: %q", name, out)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	buf := captureStderr(t)

	logger, closeFn, err := New("", "WARN")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("INFO record written at WARN level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("WARN record missing: %q", buf.String())
	}
}

func TestNew_InvalidLevelWarns(t *testing.T) {
	buf := captureStderr(t)

	_, closeFn, err := New("", "loud")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closeFn()

	if !strings.Contains(buf.String(), "Invalid log level specified") {
		t.Errorf("Expected invalid level warning, got %q", buf.String())
	}
}

func TestNew_BadLogFile(t *testing.T) {
	captureStderr(t)
	path := filepath.Join(t.TempDir(), "missing", "dir", "hostprobe.log")
	if _, _, err := New(path, "INFO"); err == nil {
		t.Errorf("New(%q) succeeded, want error", path)
	}
}
