package netif

import (
	"fmt"
	"net"
	"net/netip"

	"hostprobe/internal/models"
)

// Record is an interface's accumulated IPv4 address, mask and MAC.
type Record struct {
	Name string
	Addr netip.Addr
	Mask netip.Addr
	MAC  net.HardwareAddr
}

// Complete reports whether all three fields are populated.
func (r Record) Complete() bool {
	return r.Addr.IsValid() && r.Mask.IsValid() && len(r.MAC) > 0
}

// SenderIdentity is the source of an ARP request.
type SenderIdentity struct {
	Interface string
	Addr      netip.Addr
	MAC       net.HardwareAddr
}

// Records folds entries into completed records. The accumulator is cleared
// when the interface name changes, when it holds a loopback address, and after
// each completed record is emitted.
func Records(entries []Entry) []Record {
	var out []Record
	acc := Record{}
	for _, e := range entries {
		if e.Name != acc.Name {
			acc = Record{Name: e.Name}
		}
		switch e.Kind {
		case KindAddr:
			acc.Addr = e.Addr
		case KindMask:
			acc.Mask = e.Mask
		case KindLink:
			acc.MAC = e.MAC
		}
		if acc.Addr.IsValid() && acc.Addr.IsLoopback() {
			acc = Record{Name: acc.Name}
			continue
		}
		if acc.Complete() {
			out = append(out, acc)
			acc = Record{Name: acc.Name}
		}
	}
	return out
}

// SameSubnet reports whether r and dst share a subnet under r's mask. The
// destination's own prefix length is unknown, so r's mask is applied to both.
func (r Record) SameSubnet(dst netip.Addr) bool {
	if !r.Addr.Is4() || !r.Mask.Is4() || !dst.Is4() {
		return false
	}
	a, m, d := r.Addr.As4(), r.Mask.As4(), dst.As4()
	for i := range m {
		if a[i]&m[i] != d[i]&m[i] {
			return false
		}
	}
	return true
}

// Match returns the first record on dst's subnet.
func Match(records []Record, dst netip.Addr) (SenderIdentity, error) {
	for _, r := range records {
		if r.Addr.IsLoopback() {
			continue
		}
		if r.SameSubnet(dst) {
			return SenderIdentity{Interface: r.Name, Addr: r.Addr, MAC: r.MAC}, nil
		}
	}
	return SenderIdentity{}, fmt.Errorf("%s: %w", dst, models.ErrNoMatch)
}

// Locate enumerates c and returns the sender identity for dst.
func Locate(c Catalog, dst netip.Addr) (SenderIdentity, error) {
	if !dst.Is4() {
		return SenderIdentity{}, fmt.Errorf("%s is not an IPv4 address: %w", dst, models.ErrResolution)
	}
	entries, err := c.Enumerate()
	if err != nil {
		return SenderIdentity{}, fmt.Errorf("enumerate interfaces: %w", err)
	}
	return Match(Records(entries), dst)
}
