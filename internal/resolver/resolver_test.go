package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hostprobe/internal/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantFamily Family
		wantAddr   string
		wantErr    error
	}{
		{name: "IPv4 loopback", text: "127.0.0.1", wantFamily: V4, wantAddr: "127.0.0.1"},
		{name: "IPv6 loopback", text: "::1", wantFamily: V6, wantAddr: "::1"},
		{name: "IPv6 with zone", text: "fe80::1%eth0", wantFamily: V6, wantAddr: "fe80::1%eth0"},
		{name: "IPv4-mapped IPv6", text: "::ffff:10.0.0.5", wantFamily: V4, wantAddr: "10.0.0.5"},
		{name: "Hostname", text: "not-an-ip", wantErr: models.ErrInvalidAddress},
		{name: "Octet out of range", text: "256.1.1.1", wantErr: models.ErrInvalidAddress},
		{name: "Empty", text: "", wantErr: models.ErrInvalidAddress},
		{name: "CIDR", text: "10.0.0.0/24", wantErr: models.ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, err := Resolve(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.text, err)
			}
			if dst.Family != tt.wantFamily {
				t.Errorf("Family = %s, want %s", dst.Family, tt.wantFamily)
			}
			if dst.Addr.String() != tt.wantAddr {
				t.Errorf("Addr = %s, want %s", dst.Addr, tt.wantAddr)
			}
			if dst.Text != tt.text {
				t.Errorf("Text = %q, want %q", dst.Text, tt.text)
			}
		})
	}
}

func TestDestination_IPAddr(t *testing.T) {
	dst, err := Resolve("fe80::1%lo")
	if err != nil {
		t.Fatal(err)
	}
	ipAddr := dst.IPAddr()
	if ipAddr.Zone != "lo" || ipAddr.IP.String() != "fe80::1" {
		t.Errorf("IPAddr() = %v", ipAddr)
	}
}

func TestResolveIPv4(t *testing.T) {
	addr, err := ResolveIPv4("10.0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.As4() != [4]byte{10, 0, 0, 5} {
		t.Errorf("addr = %v", addr)
	}

	for _, text := range []string{"::1", "bogus", "10.0.0.0/8"} {
		if _, err := ResolveIPv4(text); !errors.Is(err, models.ErrResolution) {
			t.Errorf("ResolveIPv4(%q) error = %v, want ErrResolution", text, err)
		}
	}
}

func TestLookupProtocol(t *testing.T) {
	orig := protocolsFile
	defer func() { protocolsFile = orig }()

	dir := t.TempDir()
	db := filepath.Join(dir, "protocols")
	content := "# comment line\nicmp\t1\tICMP\t# internet control message protocol\n" +
		"ipv6-icmp 58 IPv6-ICMP\t# ICMP for IPv6\n"
	if err := os.WriteFile(db, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		fam  Family
		want int
	}{
		{"icmp from database", db, V4, 1},
		{"icmp6 via alias", db, V6, 58},
		{"missing database falls back", filepath.Join(dir, "absent"), V4, 1},
		{"missing database falls back v6", filepath.Join(dir, "absent"), V6, 58},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			protocolsFile = tt.file
			got, err := LookupProtocol(tt.fam)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LookupProtocol(%s) = %d, want %d", tt.fam, got, tt.want)
			}
		})
	}

	if _, err := LookupProtocol(Family(9)); !errors.Is(err, models.ErrResolution) {
		t.Errorf("unknown family error = %v, want ErrResolution", err)
	}
}
