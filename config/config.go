package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// envFile is loaded before parsing so HOSTPROBE_* variables can supply defaults.
var envFile = ".env"

const (
	CommandPing  = "ping"
	CommandArp   = "arp"
	CommandSweep = "sweep"
)

// Config holds all configuration settings for the application.
type Config struct {
	Command string

	// ping, arp
	Address      string
	Tries        int
	Unprivileged bool
	Send         bool

	// sweep
	Targets    string
	Workers    int
	QueueSize  int
	ResumeFile string
	OutputFile string

	LogFile     string
	LogLevel    string
	MetricsFile string
}

type PingCmd struct {
	Address      string `arg:"" help:"Literal IPv4 or IPv6 address to probe."`
	Tries        int    `help:"Number of echo attempts." default:"3" env:"HOSTPROBE_TRIES"`
	Unprivileged bool   `help:"Probe through unprivileged UDP ICMP sockets instead of raw sockets."`
}

type ArpCmd struct {
	Address string `arg:"" help:"Literal IPv4 address on a local subnet."`
	Send    bool   `help:"Inject the frame on the located interface instead of a dry run."`
}

type SweepCmd struct {
	Targets      string `arg:"" optional:"" help:"Comma separated addresses, a CIDR block, or a TXT/CSV file of addresses."`
	Tries        int    `help:"Number of echo attempts per target." default:"3" env:"HOSTPROBE_TRIES"`
	Workers      int    `help:"Number of concurrent probe workers." default:"4" env:"HOSTPROBE_WORKERS"`
	Queue        int    `help:"Bounded result queue size (default: workers * 1024)."`
	Output       string `help:"File to save sweep results." default:"results.csv"`
	Resume       string `help:"Resume sweep from a checkpoint.json file."`
	Unprivileged bool   `help:"Probe through unprivileged UDP ICMP sockets instead of raw sockets."`
}

type cli struct {
	LogFile     string `help:"Also append logs to this file." env:"HOSTPROBE_LOG_FILE"`
	LogLevel    string `help:"DEBUG, INFO, WARN or ERROR." default:"INFO" env:"HOSTPROBE_LOG_LEVEL"`
	MetricsFile string `help:"Write probe counters to this Prometheus textfile on exit." env:"HOSTPROBE_METRICS_FILE"`

	Ping  PingCmd  `cmd:"" help:"Send ICMP/ICMPv6 echo requests and report whether the host is up."`
	Arp   ArpCmd   `cmd:"" help:"Build an ARP who-has request for a host on a local subnet."`
	Sweep SweepCmd `cmd:"" help:"Probe many hosts concurrently and write the outcomes to CSV."`
}

// Load parses command-line arguments (without the program name) and returns
// a populated Config struct.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var c cli
	parser, err := kong.New(&c,
		kong.Name("hostprobe"),
		kong.Description("Host reachability probes: ICMP/ICMPv6 echo and ARP who-has."),
	)
	if err != nil {
		return nil, err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Command:     strings.Fields(kctx.Command())[0],
		LogFile:     c.LogFile,
		LogLevel:    c.LogLevel,
		MetricsFile: c.MetricsFile,
	}

	switch cfg.Command {
	case CommandPing:
		if c.Ping.Tries <= 0 {
			return nil, fmt.Errorf("--tries must be a positive integer")
		}
		cfg.Address = c.Ping.Address
		cfg.Tries = c.Ping.Tries
		cfg.Unprivileged = c.Ping.Unprivileged
	case CommandArp:
		cfg.Address = c.Arp.Address
		cfg.Send = c.Arp.Send
	case CommandSweep:
		s := c.Sweep
		if s.Targets == "" && s.Resume == "" {
			return nil, fmt.Errorf("missing required arguments: <targets> or --resume")
		}
		if s.Tries <= 0 {
			return nil, fmt.Errorf("--tries must be a positive integer")
		}
		if s.Workers <= 0 {
			return nil, fmt.Errorf("--workers must be a positive integer")
		}
		queueSize := s.Queue
		if queueSize <= 0 {
			queueSize = s.Workers * 1024
		}
		cfg.Targets = s.Targets
		cfg.Tries = s.Tries
		cfg.Unprivileged = s.Unprivileged
		cfg.Workers = s.Workers
		cfg.QueueSize = queueSize
		cfg.OutputFile = s.Output
		cfg.ResumeFile = s.Resume
	}

	return cfg, nil
}
