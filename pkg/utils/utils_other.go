//go:build !unix

package utils

import "log/slog"

// CheckPrivileges reports true; raw socket support is decided when the socket is opened.
func CheckPrivileges(logger *slog.Logger) bool { return true }

// CheckFileDescriptorLimit is a no-op without POSIX resource limits.
func CheckFileDescriptorLimit(logger *slog.Logger, workers int) {}
