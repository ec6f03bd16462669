// Package arp builds ARP "who-has" request frames and hands them to a
// link-layer injector.
package arp

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"hostprobe/internal/netif"
)

// Frame is an Ethernet-encapsulated ARP request. It is not mutated after Build.
type Frame struct {
	DstMAC    net.HardwareAddr
	SrcMAC    net.HardwareAddr
	SenderMAC net.HardwareAddr
	SenderIP  netip.Addr
	TargetMAC net.HardwareAddr
	TargetIP  netip.Addr

	// Raw is the serialized frame, padded to the Ethernet minimum.
	Raw []byte
}

// Build assembles the request sent by id asking who owns dst.
func Build(id netif.SenderIdentity, dst netip.Addr) (Frame, error) {
	if len(id.MAC) != 6 {
		return Frame{}, fmt.Errorf("sender MAC %v is not an Ethernet address", id.MAC)
	}
	if !id.Addr.Is4() || !dst.Is4() {
		return Frame{}, fmt.Errorf("ARP needs IPv4 sender and target, got %s and %s", id.Addr, dst)
	}

	f := Frame{
		DstMAC:    layers.EthernetBroadcast,
		SrcMAC:    id.MAC,
		SenderMAC: id.MAC,
		SenderIP:  id.Addr,
		TargetMAC: make(net.HardwareAddr, 6),
		TargetIP:  dst,
	}

	sender, target := f.SenderIP.As4(), f.TargetIP.As4()
	eth := &layers.Ethernet{
		SrcMAC:       f.SrcMAC,
		DstMAC:       f.DstMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	req := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(f.SenderMAC),
		SourceProtAddress: sender[:],
		DstHwAddress:      []byte(f.TargetMAC),
		DstProtAddress:    target[:],
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, req); err != nil {
		return Frame{}, fmt.Errorf("failed to serialize ARP frame: %w", err)
	}
	f.Raw = append([]byte(nil), buf.Bytes()...)
	return f, nil
}
