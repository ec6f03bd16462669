//go:build linux

package netif

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// NewSystemCatalog returns the catalog for this host. On Linux it reads links
// and IPv4 addresses over netlink.
func NewSystemCatalog() Catalog { return netlinkCatalog{} }

type netlinkCatalog struct{}

func (netlinkCatalog) Enumerate() ([]Entry, error) {
	handle, err := netlink.NewHandle()
	if err != nil {
		return nil, fmt.Errorf("failed to create netlink handle: %w", err)
	}
	defer handle.Close()

	links, err := handle.LinkList()
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	var entries []Entry
	for _, link := range links {
		attrs := link.Attrs()
		addrs, err := handle.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			return nil, fmt.Errorf("addresses of %s: %w", attrs.Name, err)
		}
		nets := make([]*net.IPNet, 0, len(addrs))
		for _, a := range addrs {
			if a.IPNet != nil {
				nets = append(nets, a.IPNet)
			}
		}
		entries = entriesFor(entries, attrs.Name, attrs.HardwareAddr, nets)
	}
	return entries, nil
}
