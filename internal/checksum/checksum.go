// Package checksum implements the RFC 1071 Internet checksum used by ICMP and
// ICMPv6 headers.
package checksum

import (
	"encoding/binary"
	"net/netip"

	"golang.org/x/net/icmp"
)

// ProtocolICMPv6 is the next-header value carried in the IPv6 pseudo-header.
const ProtocolICMPv6 = 58

// Sum computes the one's-complement Internet checksum over b.
//
// b is read as a sequence of big-endian 16-bit words. A trailing odd byte is
// added as the high byte of a final word.
func Sum(b []byte) uint16 {
	var sum uint32
	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if n%2 == 1 {
		sum += uint32(b[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	return ^uint16(sum)
}

// IPv6PseudoHeader returns the 40-byte pseudo-header that precedes an ICMPv6
// message for checksum purposes: source address (16), destination address
// (16), upper-layer length as uint32 (4), three zero bytes and the next-header
// value (4).
func IPv6PseudoHeader(src, dst netip.Addr, payloadLen int) []byte {
	s, d := src.As16(), dst.As16()
	ph := icmp.IPv6PseudoHeader(s[:], d[:])
	binary.BigEndian.PutUint32(ph[32:36], uint32(payloadLen))
	ph[39] = ProtocolICMPv6
	return ph
}

// SumIPv6 computes the ICMPv6 checksum of msg as sent from src to dst. The
// checksum field inside msg must be zero.
func SumIPv6(src, dst netip.Addr, msg []byte) uint16 {
	buf := append(IPv6PseudoHeader(src, dst, len(msg)), msg...)
	return Sum(buf)
}
