package resolver

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"hostprobe/internal/models"
)

// protocolsFile is the system protocols database. Tests point it elsewhere.
var protocolsFile = "/etc/protocols"

// protocolNames lists the names tried for each family, conventional name first.
var protocolNames = map[Family][]string{
	V4: {"icmp"},
	V6: {"icmp6", "ipv6-icmp"},
}

// LookupProtocol returns the control-message protocol number for family.
//
// The protocols database is consulted by name. When it is unreadable or lacks
// the entry the IANA number carried by x/net is used instead, matching how the
// net package falls back for "ip4:icmp" style networks.
func LookupProtocol(f Family) (int, error) {
	names, ok := protocolNames[f]
	if !ok {
		return 0, fmt.Errorf("no control-message protocol for %s: %w", f, models.ErrResolution)
	}
	if db, err := readProtocols(protocolsFile); err == nil {
		for _, name := range names {
			if proto, ok := db[name]; ok {
				return proto, nil
			}
		}
	}
	if f == V4 {
		return ipv4.ICMPTypeEcho.Protocol(), nil
	}
	return ipv6.ICMPTypeEchoRequest.Protocol(), nil
}

// readProtocols parses a protocols(5) file into a name/alias -> number map.
func readProtocols(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		proto, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		for _, name := range append([]string{fields[0]}, fields[2:]...) {
			if _, seen := db[strings.ToLower(name)]; !seen {
				db[strings.ToLower(name)] = proto
			}
		}
	}
	return db, scanner.Err()
}
