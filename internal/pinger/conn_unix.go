//go:build linux || darwin || freebsd || netbsd || openbsd

package pinger

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"golang.org/x/sys/unix"

	"hostprobe/internal/models"
	"hostprobe/internal/resolver"
)

// rawConn is a connected SOCK_RAW endpoint driven directly through x/sys/unix.
type rawConn struct {
	fd    int
	local netip.Addr
}

// DialRaw opens a raw socket for dst's family and proto, sets the receive
// timeout and connects it to dst so that send/recv target it implicitly.
func DialRaw(dst resolver.Destination, proto int, timeout time.Duration) (Conn, error) {
	domain := unix.AF_INET
	if dst.Family == resolver.V6 {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_RAW, proto)
	if err != nil {
		return nil, fmt.Errorf("socket: %v: %w", err, models.ErrSocket)
	}

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_RCVTIMEO: %v: %w", err, models.ErrSocket)
	}

	sa, err := sockaddr(dst)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("connect %s: %v: %w", dst.Addr, err, models.ErrSocket)
	}

	c := &rawConn{fd: fd}
	if lsa, err := unix.Getsockname(fd); err == nil {
		c.local = addrFromSockaddr(lsa)
	}
	return c, nil
}

func sockaddr(dst resolver.Destination) (unix.Sockaddr, error) {
	switch dst.Family {
	case resolver.V4:
		return &unix.SockaddrInet4{Addr: dst.Addr.As4()}, nil
	case resolver.V6:
		sa := &unix.SockaddrInet6{Addr: dst.Addr.As16()}
		if zone := dst.Addr.Zone(); zone != "" {
			ifi, err := net.InterfaceByName(zone)
			if err != nil {
				return nil, fmt.Errorf("zone %q: %v: %w", zone, err, models.ErrResolution)
			}
			sa.ZoneId = uint32(ifi.Index)
		}
		return sa, nil
	default:
		return nil, fmt.Errorf("unsupported family %s: %w", dst.Family, models.ErrResolution)
	}
}

func addrFromSockaddr(sa unix.Sockaddr) netip.Addr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(sa.Addr)
	case *unix.SockaddrInet6:
		return netip.AddrFrom16(sa.Addr)
	default:
		return netip.Addr{}
	}
}

func (c *rawConn) Send(b []byte) error {
	_, err := unix.Write(c.fd, b)
	return err
}

func (c *rawConn) Recv(b []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, errRecvTimeout
		}
		return n, err
	}
}

func (c *rawConn) LocalAddr() netip.Addr { return c.local }

func (c *rawConn) Close() error { return unix.Close(c.fd) }
