package arp

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"hostprobe/internal/models"
	"hostprobe/internal/netif"
	"hostprobe/internal/resolver"
)

// Requester resolves a target, finds a sender identity for it and builds the
// ARP request frame. Without an Injector the run is a dry run.
type Requester struct {
	Catalog  netif.Catalog
	Injector Injector
	Logger   *slog.Logger

	// OnFrame is an optional hook called with every built frame and whether
	// it was injected.
	OnFrame func(f Frame, injected bool)
}

// NewRequester creates a new instance of a Requester over the host catalog.
func NewRequester(injector Injector, logger *slog.Logger) *Requester {
	return &Requester{Catalog: netif.NewSystemCatalog(), Injector: injector, Logger: logger}
}

// Run prepares, and when an Injector is configured sends, a who-has request
// for address.
func (r *Requester) Run(address string) (models.ArpStatus, Frame, error) {
	logger := r.Logger.With(
		slog.String("component", "arp"),
		slog.String("run_id", uuid.NewString()),
		slog.String("target", address),
	)

	dst, err := resolver.ResolveIPv4(address)
	if err != nil {
		logger.Debug("Target rejected.", "error", err)
		return models.ArpStatusFor(err), Frame{}, err
	}

	id, err := netif.Locate(r.Catalog, dst)
	if err != nil {
		logger.Debug("No sender identity.", "error", err)
		return models.ArpStatusFor(err), Frame{}, err
	}
	logger.Debug("Sender identity located.", "interface", id.Interface, "sender_ip", id.Addr, "sender_mac", id.MAC)

	frame, err := Build(id, dst)
	if err != nil {
		logger.Debug("Frame construction failed.", "error", err)
		return models.ArpUnspecified, Frame{}, err
	}

	if r.Injector == nil {
		logger.Debug("Frame built, no injector configured.", "bytes", len(frame.Raw))
		r.observe(frame, false)
		return models.ArpSuccess, frame, nil
	}

	if err := r.Injector.Inject(id.Interface, frame.Raw); err != nil {
		logger.Debug("Frame injection failed.", "interface", id.Interface, "error", err)
		r.observe(frame, false)
		err = fmt.Errorf("%v: %w", err, models.ErrInject)
		return models.ArpStatusFor(err), frame, err
	}
	logger.Debug("Frame injected.", "interface", id.Interface, "bytes", len(frame.Raw))
	r.observe(frame, true)
	return models.ArpSuccess, frame, nil
}

func (r *Requester) observe(f Frame, injected bool) {
	if r.OnFrame != nil {
		r.OnFrame(f, injected)
	}
}
