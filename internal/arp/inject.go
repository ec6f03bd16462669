package arp

import (
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"
)

// Injector writes a complete link-layer frame onto an interface.
type Injector interface {
	Inject(iface string, frame []byte) error
}

// PcapInjector injects frames through libpcap: open, inject, close per frame.
type PcapInjector struct {
	Snaplen int32
	Timeout time.Duration
}

// NewPcapInjector creates a new instance of a PcapInjector.
func NewPcapInjector() *PcapInjector {
	return &PcapInjector{Snaplen: 65535, Timeout: pcap.BlockForever}
}

func (p *PcapInjector) Inject(iface string, frame []byte) error {
	handle, err := pcap.OpenLive(iface, p.Snaplen, false, p.Timeout)
	if err != nil {
		return fmt.Errorf("pcap open %s: %w", iface, err)
	}
	defer handle.Close()

	if err := handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("pcap inject on %s: %w", iface, err)
	}
	return nil
}
