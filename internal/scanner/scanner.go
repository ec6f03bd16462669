package scanner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hostprobe/internal/models"
	"hostprobe/internal/pinger"
)

// Scanner defines the interface for a single-target probe.
type Scanner interface {
	Scan(address string) models.ProbeResult
}

// PingScanner runs one bounded echo probe per target.
type PingScanner struct {
	Prober pinger.Prober
	Tries  int
	Logger *slog.Logger
}

// NewPingScanner creates a new instance of a PingScanner.
func NewPingScanner(p pinger.Prober, tries int, logger *slog.Logger) *PingScanner {
	return &PingScanner{Prober: p, Tries: tries, Logger: logger}
}

// Scan probes a single target. Latency covers the whole run, lost attempts included.
func (s *PingScanner) Scan(address string) models.ProbeResult {
	startTime := time.Now()
	outcome, err := s.Prober.Ping(address, s.Tries)
	latency := time.Since(startTime)

	s.Logger.Debug("Probe finished",
		"scanner", "PingScanner",
		"target", address,
		"outcome", outcome,
		"latency_ms", latency.Seconds()*1000,
		"error", err,
	)
	return models.ProbeResult{
		Timestamp: startTime,
		Address:   address,
		Outcome:   outcome,
		Latency:   latency,
		Error:     err,
	}
}

// Worker pulls targets from a queue, probes them, and sends results. A target
// taken from the queue is always reported, even after cancellation.
func Worker(ctx context.Context, id int, parentLogger *slog.Logger, s Scanner, tasks <-chan string, results chan<- models.ProbeResult, delay time.Duration) error {
	// Create a child logger for this specific worker
	workerLogger := parentLogger.With(slog.Int("worker_id", id))
	workerLogger.Debug("Worker started.")

	for {
		select {
		case target, ok := <-tasks:
			if !ok {
				workerLogger.Debug("Task channel closed. Shutting down.")
				return nil
			}
			workerLogger.Debug("Probing target", "target", target)
			results <- s.Scan(target)
			if delay > 0 {
				time.Sleep(delay)
			}
		case <-ctx.Done():
			workerLogger.Info("Shutdown signal received. Exiting.")
			return ctx.Err()
		}
	}
}

// Sweep fans targets out to a bounded pool of workers.
type Sweep struct {
	Scanner Scanner
	Workers int
	Delay   time.Duration
	Logger  *slog.Logger
}

// Run probes targets until all are done or ctx is canceled. It returns the
// targets that were never handed to a worker, in input order; they are empty
// unless the error is a context error. Results must be drained by the caller.
func (sw *Sweep) Run(ctx context.Context, targets []string, results chan<- models.ProbeResult) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	tasks := make(chan string)

	for i := 1; i <= sw.Workers; i++ {
		id := i
		g.Go(func() error {
			return Worker(gctx, id, sw.Logger, sw.Scanner, tasks, results, sw.Delay)
		})
	}

	next := 0
	g.Go(func() error {
		defer close(tasks)
		sw.Logger.Debug("Starting to feed targets into the task queue.", "count", len(targets))
		for _, target := range targets {
			select {
			case tasks <- target:
				next++
			case <-gctx.Done():
				sw.Logger.Debug("Context canceled while feeding targets. Stopping.", "fed", next)
				return gctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	return targets[next:], err
}
