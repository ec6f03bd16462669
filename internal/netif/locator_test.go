package netif

import (
	"errors"
	"net"
	"net/netip"
	"testing"

	"hostprobe/internal/models"
)

var (
	macEth0 = net.HardwareAddr{0x02, 0x00, 0x00, 0xaa, 0xbb, 0x01}
	macEth1 = net.HardwareAddr{0x02, 0x00, 0x00, 0xaa, 0xbb, 0x02}
	macLo   = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

func ip(s string) netip.Addr { return netip.MustParseAddr(s) }

func ifaceEntries(name string, mac net.HardwareAddr, addr, mask string) []Entry {
	return []Entry{LinkEntry(name, mac), AddrEntry(name, ip(addr)), MaskEntry(name, ip(mask))}
}

func concat(groups ...[]Entry) []Entry {
	var out []Entry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []string // names of emitted records, in order
	}{
		{
			name:    "Single complete interface",
			entries: ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.255.0"),
			want:    []string{"eth0"},
		},
		{
			name: "Loopback is dropped even when scanned first",
			entries: concat(
				ifaceEntries("lo", macLo, "127.0.0.1", "255.0.0.0"),
				ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.255.0"),
			),
			want: []string{"eth0"},
		},
		{
			name: "Name change discards an incomplete record",
			entries: []Entry{
				LinkEntry("eth0", macEth0),
				AddrEntry("eth0", ip("10.0.0.2")),
				MaskEntry("eth1", ip("255.255.255.0")),
				AddrEntry("eth1", ip("10.1.0.2")),
			},
			want: nil,
		},
		{
			name: "Interface without MAC never completes",
			entries: []Entry{
				AddrEntry("tun0", ip("10.8.0.1")),
				MaskEntry("tun0", ip("255.255.255.0")),
			},
			want: nil,
		},
		{
			name: "Second address on one interface lacks a MAC",
			entries: []Entry{
				LinkEntry("eth0", macEth0),
				AddrEntry("eth0", ip("10.0.0.2")),
				MaskEntry("eth0", ip("255.255.255.0")),
				AddrEntry("eth0", ip("10.9.0.2")),
				MaskEntry("eth0", ip("255.255.0.0")),
			},
			want: []string{"eth0"},
		},
		{
			name: "Two interfaces in order",
			entries: concat(
				ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.255.0"),
				ifaceEntries("eth1", macEth1, "192.168.1.10", "255.255.255.0"),
			),
			want: []string{"eth0", "eth1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Records(tt.entries)
			if len(got) != len(tt.want) {
				t.Fatalf("Records() = %+v, want names %v", got, tt.want)
			}
			for i, r := range got {
				if r.Name != tt.want[i] {
					t.Errorf("record %d name = %s, want %s", i, r.Name, tt.want[i])
				}
				if !r.Complete() {
					t.Errorf("record %d is incomplete: %+v", i, r)
				}
				if r.Addr.IsLoopback() {
					t.Errorf("record %d is loopback: %+v", i, r)
				}
			}
		})
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Entry
		dst      string
		wantName string
		wantAddr string
		wantMAC  net.HardwareAddr
		wantErr  error
	}{
		{
			name: "Only non-loopback interface shares the /24",
			entries: concat(
				ifaceEntries("lo", macLo, "127.0.0.1", "255.0.0.0"),
				ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.255.0"),
			),
			dst:      "10.0.0.5",
			wantName: "eth0",
			wantAddr: "10.0.0.2",
			wantMAC:  macEth0,
		},
		{
			name: "First matching interface wins",
			entries: concat(
				ifaceEntries("eth0", macEth0, "192.168.1.2", "255.255.255.0"),
				ifaceEntries("eth1", macEth1, "10.0.0.3", "255.0.0.0"),
				ifaceEntries("eth2", macEth0, "10.0.0.4", "255.255.255.0"),
			),
			dst:      "10.0.0.5",
			wantName: "eth1",
			wantAddr: "10.0.0.3",
			wantMAC:  macEth1,
		},
		{
			name:    "Loopback destination never matches loopback interface",
			entries: ifaceEntries("lo", macLo, "127.0.0.1", "255.0.0.0"),
			dst:     "127.0.0.2",
			wantErr: models.ErrNoMatch,
		},
		{
			name:    "No shared subnet",
			entries: ifaceEntries("eth0", macEth0, "192.168.1.2", "255.255.255.0"),
			dst:     "10.0.0.5",
			wantErr: models.ErrNoMatch,
		},
		{
			name: "Candidate mask is applied to the destination",
			// A /16 interface mask claims 10.0.200.9 even if that host lives on a /24 elsewhere.
			entries:  ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.0.0"),
			dst:      "10.0.200.9",
			wantName: "eth0",
			wantAddr: "10.0.0.2",
			wantMAC:  macEth0,
		},
		{
			name:    "IPv6 destination",
			entries: ifaceEntries("eth0", macEth0, "10.0.0.2", "255.255.255.0"),
			dst:     "::1",
			wantErr: models.ErrResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Locate(StaticCatalog(tt.entries), ip(tt.dst))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Locate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate() unexpected error: %v", err)
			}
			if id.Interface != tt.wantName || id.Addr != ip(tt.wantAddr) || id.MAC.String() != tt.wantMAC.String() {
				t.Errorf("Locate() = %+v, want %s %s %s", id, tt.wantName, tt.wantAddr, tt.wantMAC)
			}
			if id.Addr.IsLoopback() {
				t.Errorf("Locate() returned a loopback identity: %+v", id)
			}
		})
	}
}

func TestLocate_CatalogError(t *testing.T) {
	boom := errors.New("netlink unavailable")
	_, err := Locate(CatalogFunc(func() ([]Entry, error) { return nil, boom }), ip("10.0.0.5"))
	if !errors.Is(err, boom) {
		t.Errorf("Locate() error = %v, want wrapped %v", err, boom)
	}
}

func TestEntriesFor(t *testing.T) {
	_, n4, _ := net.ParseCIDR("10.0.0.2/24")
	n4.IP = net.ParseIP("10.0.0.2")
	_, n6, _ := net.ParseCIDR("fe80::1/64")

	got := entriesFor(nil, "eth0", macEth0, []*net.IPNet{n6, n4})
	want := []Entry{
		LinkEntry("eth0", macEth0),
		AddrEntry("eth0", ip("10.0.0.2")),
		MaskEntry("eth0", ip("255.255.255.0")),
	}
	if len(got) != len(want) {
		t.Fatalf("entriesFor() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Addr != want[i].Addr || got[i].Mask != want[i].Mask || got[i].MAC.String() != want[i].MAC.String() {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Non-Ethernet link addresses (e.g. loopback with none, or 20-byte InfiniBand) are skipped.
	if got := entriesFor(nil, "ib0", make(net.HardwareAddr, 20), nil); len(got) != 0 {
		t.Errorf("entriesFor() with 20-byte link address = %+v, want none", got)
	}
}

func TestSystemCatalogs(t *testing.T) {
	for name, c := range map[string]Catalog{"system": NewSystemCatalog(), "net": NewNetCatalog()} {
		t.Run(name, func(t *testing.T) {
			entries, err := c.Enumerate()
			if err != nil {
				t.Skipf("interface enumeration unavailable: %v", err)
			}
			for _, e := range entries {
				switch e.Kind {
				case KindAddr:
					if !e.Addr.Is4() {
						t.Errorf("address entry is not IPv4: %+v", e)
					}
				case KindMask:
					if !e.Mask.Is4() {
						t.Errorf("mask entry is not IPv4: %+v", e)
					}
				case KindLink:
					if len(e.MAC) != 6 {
						t.Errorf("link entry is not Ethernet sized: %+v", e)
					}
				default:
					t.Errorf("entry without a kind: %+v", e)
				}
			}
			for _, r := range Records(entries) {
				if r.Addr.IsLoopback() {
					t.Errorf("loopback record emitted: %+v", r)
				}
			}
		})
	}
}
