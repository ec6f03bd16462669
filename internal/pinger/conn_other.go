//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package pinger

import (
	"fmt"
	"runtime"
	"time"

	"hostprobe/internal/models"
	"hostprobe/internal/resolver"
)

// DialRaw is not available on this platform; use the unprivileged prober.
func DialRaw(dst resolver.Destination, proto int, timeout time.Duration) (Conn, error) {
	return nil, fmt.Errorf("raw sockets unsupported on %s: %w", runtime.GOOS, models.ErrSocket)
}
