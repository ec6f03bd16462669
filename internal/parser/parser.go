package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"net"
	"os"
	"strings"
)

// maxCIDRHosts bounds CIDR expansion; an IPv6 /64 would otherwise never finish.
const maxCIDRHosts = 1 << 16

// ParseTargets parses sweep input from a CIDR, a file, or a comma-separated list.
// Duplicates and blank entries are dropped; order of first appearance is kept.
func ParseTargets(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty target input")
	}

	var targets []string
	var err error
	switch {
	case isCIDR(input):
		targets, err = parseCIDR(input)
	case fileExists(input):
		targets, err = parseTargetsFromFile(input)
	default:
		targets = strings.Split(input, ",")
	}
	if err != nil {
		return nil, err
	}
	return dedupe(targets), nil
}

func isCIDR(input string) bool {
	_, _, err := net.ParseCIDR(input)
	return err == nil
}

// parseCIDR expands a CIDR block into a list of individual IP addresses.
func parseCIDR(cidr string) ([]string, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	ones, bits := ipnet.Mask.Size()
	if bits-ones > 16 {
		return nil, fmt.Errorf("CIDR %s expands to more than %d addresses", cidr, maxCIDRHosts)
	}
	var ips []string
	for ip := ip.Mask(ipnet.Mask); ipnet.Contains(ip); func(ip net.IP) {
		for j := len(ip) - 1; j >= 0; j-- {
			ip[j]++
			if ip[j] > 0 {
				break
			}
		}
	}(ip) {
		ips = append(ips, ip.String())
	}
	if len(ips) <= 2 { // Handle /32 and /31
		return ips, nil
	}
	return ips[1 : len(ips)-1], nil // Exclude network and broadcast
}

// parseTargetsFromFile reads addresses from a CSV (first column, header skipped)
// or a plain text file (one per line, # comments allowed).
func parseTargetsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ips []string
	if strings.HasSuffix(strings.ToLower(filePath), ".csv") {
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		for i, record := range records {
			if i == 0 {
				continue
			} // Skip header
			if len(record) > 0 {
				ips = append(ips, record[0])
			}
		}
		return ips, nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		ips = append(ips, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return ips, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// fileExists checks if a file exists.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
