package pinger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"hostprobe/internal/checksum"
	"hostprobe/internal/resolver"
)

// Echo header layout, shared by ICMP and ICMPv6:
//
//	offset 0, len 1: type
//	offset 1, len 1: code
//	offset 2, len 2: checksum
//	offset 4, len 2: identifier
//	offset 6, len 2: sequence number
const (
	offType     = 0
	offCode     = 1
	offChecksum = 2
	offID       = 4
	offSeq      = 6
	echoLen     = 8
)

var errShortMessage = errors.New("message too short for an echo header")

// Echo is a decoded echo request or reply header.
type Echo struct {
	Type     int
	Code     int
	Checksum uint16
	ID       uint16
	Seq      uint16
}

// echoTypes returns the request and reply types for a family.
func echoTypes(f resolver.Family) (request, reply int) {
	if f == resolver.V6 {
		return int(ipv6.ICMPTypeEchoRequest), int(ipv6.ICMPTypeEchoReply)
	}
	return int(ipv4.ICMPTypeEcho), int(ipv4.ICMPTypeEchoReply)
}

// marshalEcho encodes an echo header with a zero checksum field.
func marshalEcho(typ int, id, seq uint16) []byte {
	b := make([]byte, echoLen)
	b[offType] = byte(typ)
	b[offCode] = 0
	binary.BigEndian.PutUint16(b[offID:], id)
	binary.BigEndian.PutUint16(b[offSeq:], seq)
	return b
}

// buildRequestV4 returns a complete ICMP echo request.
func buildRequestV4(id, seq uint16) []byte {
	b := marshalEcho(int(ipv4.ICMPTypeEcho), id, seq)
	binary.BigEndian.PutUint16(b[offChecksum:], checksum.Sum(b))
	return b
}

// buildRequestV6 returns a complete ICMPv6 echo request, checksummed over the
// pseudo-header for src -> dst.
func buildRequestV6(src, dst netip.Addr, id, seq uint16) []byte {
	b := marshalEcho(int(ipv6.ICMPTypeEchoRequest), id, seq)
	binary.BigEndian.PutUint16(b[offChecksum:], checksum.SumIPv6(src, dst, b))
	return b
}

// parseEcho decodes the echo header at the start of b.
func parseEcho(b []byte) (Echo, error) {
	if len(b) < echoLen {
		return Echo{}, fmt.Errorf("%w: %d bytes", errShortMessage, len(b))
	}
	return Echo{
		Type:     int(b[offType]),
		Code:     int(b[offCode]),
		Checksum: binary.BigEndian.Uint16(b[offChecksum:]),
		ID:       binary.BigEndian.Uint16(b[offID:]),
		Seq:      binary.BigEndian.Uint16(b[offSeq:]),
	}, nil
}

// parseDatagram decodes an inbound datagram. IPv4 raw sockets deliver the IP
// header in front of the ICMP message; IPv6 raw sockets do not.
func parseDatagram(f resolver.Family, b []byte) (Echo, error) {
	if f == resolver.V6 {
		return parseEcho(b)
	}
	h, err := ipv4.ParseHeader(b)
	if err != nil {
		return Echo{}, fmt.Errorf("ipv4 header: %w", err)
	}
	if h.Len > len(b) {
		return Echo{}, fmt.Errorf("ipv4 header length %d exceeds datagram length %d", h.Len, len(b))
	}
	return parseEcho(b[h.Len:])
}

// matches reports whether reply completes the request identified by id/seq.
func matches(f resolver.Family, reply Echo, id, seq uint16) bool {
	_, replyType := echoTypes(f)
	return reply.Type == replyType && reply.ID == id && reply.Seq == seq
}
