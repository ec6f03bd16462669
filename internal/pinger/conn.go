package pinger

import (
	"net/netip"
	"time"

	"hostprobe/internal/resolver"
)

// Conn is a raw control-message endpoint connected to one destination.
// Recv blocks for at most the receive timeout configured at open time.
type Conn interface {
	Send(b []byte) error
	Recv(b []byte) (int, error)
	LocalAddr() netip.Addr
	Close() error
}

// Dialer opens a Conn of dst's family using protocol proto.
type Dialer func(dst resolver.Destination, proto int, timeout time.Duration) (Conn, error)
