// Package netif enumerates local interfaces and picks the one that can send
// an ARP request for a destination.
package netif

import (
	"fmt"
	"net"
	"net/netip"
)

// EntryKind says which single field an Entry carries.
type EntryKind int

const (
	KindAddr EntryKind = iota + 1
	KindMask
	KindLink
)

// Entry is one raw interface entry: a name and exactly one of an IPv4
// address, an IPv4 subnet mask or a link-layer address.
type Entry struct {
	Name string
	Kind EntryKind
	Addr netip.Addr
	Mask netip.Addr
	MAC  net.HardwareAddr
}

func AddrEntry(name string, addr netip.Addr) Entry { return Entry{Name: name, Kind: KindAddr, Addr: addr} }
func MaskEntry(name string, mask netip.Addr) Entry { return Entry{Name: name, Kind: KindMask, Mask: mask} }
func LinkEntry(name string, mac net.HardwareAddr) Entry {
	return Entry{Name: name, Kind: KindLink, MAC: mac}
}

// Catalog enumerates raw interface entries in a stable order.
type Catalog interface {
	Enumerate() ([]Entry, error)
}

// CatalogFunc adapts a function to a Catalog.
type CatalogFunc func() ([]Entry, error)

func (f CatalogFunc) Enumerate() ([]Entry, error) { return f() }

// StaticCatalog returns the same entries on every call.
type StaticCatalog []Entry

func (s StaticCatalog) Enumerate() ([]Entry, error) { return s, nil }

// entriesFor appends the entries of one interface: its Ethernet address
// first, then an address and a mask entry per IPv4 network.
func entriesFor(out []Entry, name string, mac net.HardwareAddr, nets []*net.IPNet) []Entry {
	if len(mac) == 6 {
		out = append(out, LinkEntry(name, mac))
	}
	for _, n := range nets {
		ip4 := n.IP.To4()
		if ip4 == nil || len(n.Mask) != net.IPv4len {
			continue
		}
		addr, _ := netip.AddrFromSlice(ip4)
		mask, _ := netip.AddrFromSlice(net.IP(n.Mask).To4())
		out = append(out, AddrEntry(name, addr), MaskEntry(name, mask))
	}
	return out
}

// NewNetCatalog returns a catalog backed by net.Interfaces.
func NewNetCatalog() Catalog { return netCatalog{} }

type netCatalog struct{}

func (netCatalog) Enumerate() ([]Entry, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	var entries []Entry
	for _, ifi := range ifaces {
		addrs, err := ifi.Addrs()
		if err != nil {
			return nil, fmt.Errorf("addresses of %s: %w", ifi.Name, err)
		}
		var nets []*net.IPNet
		for _, a := range addrs {
			if n, ok := a.(*net.IPNet); ok {
				nets = append(nets, n)
			}
		}
		entries = entriesFor(entries, ifi.Name, ifi.HardwareAddr, nets)
	}
	return entries, nil
}
