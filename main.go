package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hostprobe/config"
	"hostprobe/internal/arp"
	"hostprobe/internal/logger"
	"hostprobe/internal/metrics"
	"hostprobe/internal/models"
	"hostprobe/internal/parser"
	"hostprobe/internal/pinger"
	"hostprobe/internal/reporter"
	"hostprobe/internal/resolver"
	"hostprobe/internal/scanner"
	"hostprobe/pkg/checkpoint"
	"hostprobe/pkg/utils"
)

// defaultCheckpointFile receives unprobed sweep targets when --resume is not set.
const defaultCheckpointFile = "checkpoint.json"

// exitUsage is returned for configuration errors.
const exitUsage = 2

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitUsage
	}

	appLogger, closeLogFile, err := logger.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return exitUsage
	}
	defer closeLogFile()

	// Set the global logger
	slog.SetDefault(appLogger)
	appLogger.Debug("Configuration loaded.", "command", cfg.Command, "tries", cfg.Tries, "unprivileged", cfg.Unprivileged)

	store := metrics.NewCounterStore()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := store.WriteTextfile(cfg.MetricsFile); err != nil {
				appLogger.Error("Failed to write metrics textfile.", "file", cfg.MetricsFile, "error", err)
			}
		}()
	}

	switch cfg.Command {
	case config.CommandPing:
		return runPing(cfg, appLogger, store)
	case config.CommandArp:
		return runArp(cfg, appLogger, store)
	case config.CommandSweep:
		return runSweep(cfg, appLogger, store)
	}
	appLogger.Error("Unknown command.", "command", cfg.Command)
	return exitUsage
}

// newProber picks the raw-socket engine or the unprivileged fallback and wires
// engine traffic into the counters.
func newProber(cfg *config.Config, appLogger *slog.Logger, store *metrics.CounterStore) pinger.Prober {
	if cfg.Unprivileged {
		return pinger.NewUnprivilegedProber(appLogger)
	}
	utils.CheckPrivileges(appLogger)
	engine := pinger.NewEngine(os.Getpid(), appLogger)
	engine.OnSent = func(f resolver.Family, _ int) { store.EchoSent(f.String()) }
	engine.OnReply = func(f resolver.Family, matched bool) { store.EchoReceived(f.String(), matched) }
	return engine
}

func runPing(cfg *config.Config, appLogger *slog.Logger, store *metrics.CounterStore) int {
	outcome, err := newProber(cfg, appLogger, store).Ping(cfg.Address, cfg.Tries)
	store.Outcome(config.CommandPing, string(outcome))
	if err != nil {
		appLogger.Debug("Probe failed.", "target", cfg.Address, "outcome", outcome, "error", err)
	}
	fmt.Println(models.Message(outcome))
	return models.ExitCode(outcome)
}

func runArp(cfg *config.Config, appLogger *slog.Logger, store *metrics.CounterStore) int {
	var injector arp.Injector
	if cfg.Send {
		utils.CheckPrivileges(appLogger)
		injector = arp.NewPcapInjector()
	}
	requester := arp.NewRequester(injector, appLogger)
	requester.OnFrame = func(_ arp.Frame, injected bool) { store.ArpFrame(injected) }

	status, frame, err := requester.Run(cfg.Address)
	store.Outcome(config.CommandArp, string(status))
	if err != nil {
		appLogger.Debug("ARP request failed.", "target", cfg.Address, "status", status, "error", err)
	} else {
		appLogger.Info("ARP request ready.", "sender_ip", frame.SenderIP, "sender_mac", frame.SenderMAC,
			"target_ip", frame.TargetIP, "injected", cfg.Send, "frame", hex.EncodeToString(frame.Raw))
	}
	fmt.Println(models.ArpMessage(status))
	return models.ArpExitCode(status)
}

func runSweep(cfg *config.Config, appLogger *slog.Logger, store *metrics.CounterStore) int {
	var targets []string
	tries := cfg.Tries

	if cfg.ResumeFile != "" {
		appLogger.Info("Attempting to resume sweep", "file", cfg.ResumeFile)
		state, err := checkpoint.LoadState(cfg.ResumeFile)
		if err != nil {
			appLogger.Warn("Failed to load checkpoint file, starting a new sweep.", "file", cfg.ResumeFile, "error", err)
		} else {
			targets = state.Targets
			if state.Tries > 0 {
				tries = state.Tries
			}
			appLogger.Info("Successfully loaded targets from checkpoint.", "count", len(targets), "tries", tries)
		}
	}
	if targets == nil && cfg.Targets != "" {
		parsed, err := parser.ParseTargets(cfg.Targets)
		if err != nil {
			appLogger.Error("Error parsing targets", "error", err)
			return exitUsage
		}
		targets = parsed
		appLogger.Debug("Targets parsed successfully.", "count", len(targets))
	}
	if len(targets) == 0 {
		appLogger.Error("No targets to probe. Check inputs.")
		return exitUsage
	}
	utils.CheckFileDescriptorLimit(appLogger, cfg.Workers)
	appLogger.Info("Total targets to probe.", "count", len(targets), "workers", cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resultsChan := make(chan models.ProbeResult, cfg.QueueSize)
	var reporterWg sync.WaitGroup
	rep := reporter.New(ctx, &reporterWg, resultsChan, cfg.OutputFile, appLogger)
	rep.OnResult = func(r models.ProbeResult) { store.Outcome(config.CommandSweep, string(r.Outcome)) }
	reporterWg.Add(1)
	go rep.Run()

	sweep := &scanner.Sweep{
		Scanner: scanner.NewPingScanner(newProber(cfg, appLogger, store), tries, appLogger),
		Workers: cfg.Workers,
		Logger:  appLogger,
	}

	appLogger.Info("Starting sweep...")
	startTime := time.Now()
	remaining, err := sweep.Run(ctx, targets, resultsChan)
	close(resultsChan)
	reporterWg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Sweep failed.", "error", err)
		return 1
	}
	if len(remaining) > 0 {
		checkpointFile := cfg.ResumeFile
		if checkpointFile == "" {
			checkpointFile = defaultCheckpointFile
		}
		if err := checkpoint.SaveState(checkpoint.State{Tries: tries, Targets: remaining}, checkpointFile); err != nil {
			appLogger.Error("Failed to save checkpoint", "error", err)
		} else {
			appLogger.Info("Checkpoint saved", "file", checkpointFile, "remaining_targets", len(remaining))
		}
		return 1
	}
	appLogger.Info("Reporter finished. Sweep complete.", "duration", time.Since(startTime), "output", cfg.OutputFile)
	return 0
}
