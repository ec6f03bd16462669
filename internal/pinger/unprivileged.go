package pinger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-ping/ping"

	"hostprobe/internal/models"
	"hostprobe/internal/resolver"
)

// UnprivilegedProber probes through go-ping's datagram ICMP sockets, which do
// not need CAP_NET_RAW on Linux when net.ipv4.ping_group_range allows it.
// It keeps the engine's budget: tries requests, Timeout apart.
type UnprivilegedProber struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewUnprivilegedProber creates a new instance of an UnprivilegedProber.
func NewUnprivilegedProber(logger *slog.Logger) *UnprivilegedProber {
	return &UnprivilegedProber{Timeout: DefaultTimeout, Logger: logger}
}

func (p *UnprivilegedProber) Ping(address string, tries int) (models.Outcome, error) {
	logger := p.Logger.With(slog.String("component", "unprivileged-pinger"), slog.String("target", address))

	dst, err := resolver.Resolve(address)
	if err != nil {
		return models.OutcomeFor(err), err
	}
	if tries <= 0 {
		return models.OutcomeNoResponse, nil
	}

	pg := ping.New(dst.Addr.String())
	pg.SetIPAddr(dst.IPAddr())
	pg.SetPrivileged(false)
	pg.Count = tries
	pg.Interval = p.Timeout
	pg.Timeout = time.Duration(tries) * p.Timeout
	pg.OnRecv = func(pkt *ping.Packet) {
		logger.Debug("Echo reply received.", "seq", pkt.Seq, "rtt", pkt.Rtt)
		pg.Stop()
	}

	if err := pg.Run(); err != nil {
		logger.Debug("Datagram ICMP socket failed.", "error", err)
		return models.OutcomeSocketFailure, fmt.Errorf("unprivileged ping: %v: %w", err, models.ErrSocket)
	}

	stats := pg.Statistics()
	logger.Debug("Unprivileged probe finished.", "sent", stats.PacketsSent, "received", stats.PacketsRecv)
	if stats.PacketsRecv > 0 {
		return models.OutcomeUp, nil
	}
	return models.OutcomeNoResponse, nil
}
