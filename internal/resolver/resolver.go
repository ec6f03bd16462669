// Package resolver turns literal address text into probe destinations.
package resolver

import (
	"fmt"
	"net"
	"net/netip"

	"hostprobe/internal/models"
)

// Family is the address family of a Destination.
type Family int

const (
	V4 Family = iota + 1
	V6
)

func (f Family) String() string {
	switch f {
	case V4:
		return "ip4"
	case V6:
		return "ip6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Destination is the resolved target of one probe run.
type Destination struct {
	Text   string
	Family Family
	Addr   netip.Addr
}

// IPAddr returns the socket-addressable form of the destination.
func (d Destination) IPAddr() *net.IPAddr {
	return &net.IPAddr{IP: net.IP(d.Addr.AsSlice()), Zone: d.Addr.Zone()}
}

// Validate reports whether text is a literal IPv4 or IPv6 address.
func Validate(text string) error {
	if _, err := netip.ParseAddr(text); err != nil {
		return fmt.Errorf("%q: %w", text, models.ErrInvalidAddress)
	}
	return nil
}

// Resolve validates text and resolves it into a Destination. No hostname
// lookup is performed.
func Resolve(text string) (Destination, error) {
	if err := Validate(text); err != nil {
		return Destination{}, err
	}
	addr, _ := netip.ParseAddr(text)
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	dst := Destination{Text: text, Addr: addr}
	switch {
	case addr.Is4():
		dst.Family = V4
	case addr.Is6():
		dst.Family = V6
	default:
		return Destination{}, fmt.Errorf("%q: no IPv4/IPv6 candidate: %w", text, models.ErrResolution)
	}
	return dst, nil
}

// ResolveIPv4 parses text into the raw IPv4 address used as the ARP target.
func ResolveIPv4(text string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%q: %w", text, models.ErrResolution)
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%q is not an IPv4 address: %w", text, models.ErrResolution)
	}
	return addr, nil
}
