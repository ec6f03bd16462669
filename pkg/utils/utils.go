//go:build unix

package utils

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// geteuid is swapped out in tests.
var geteuid = os.Geteuid

// CheckPrivileges warns if the process is not running with root rights and
// reports whether raw sockets are likely to be available.
func CheckPrivileges(logger *slog.Logger) bool {
	if geteuid() != 0 {
		logger.Warn("Running as non-root. Raw ICMP sockets and frame injection will likely fail; consider --unprivileged.",
			"component", "security", "euid", geteuid())
		return false
	}
	return true
}

// CheckFileDescriptorLimit warns if the worker count might exceed the open file limit.
// Every in-flight probe holds one raw socket.
func CheckFileDescriptorLimit(logger *slog.Logger, workers int) {
	var rLimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Debug("Could not read the open file limit.", "component", "resource", "error", err)
		return
	}
	if uint64(workers)+100 >= uint64(rLimit.Cur) { // 100 is a safety margin
		logger.Warn("Worker count is close to the file descriptor limit.",
			"component", "resource", "workers", workers, "limit", rLimit.Cur)
	}
}
