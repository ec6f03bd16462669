package models

import (
	"errors"
	"fmt"
	"time"
)

// Outcome is the terminal result of one ping run.
type Outcome string

const (
	OutcomeUp                Outcome = "UP"
	OutcomeNoResponse        Outcome = "NO_RESPONSE"
	OutcomeInvalidAddress    Outcome = "INVALID_ADDRESS"
	OutcomeResolutionFailure Outcome = "RESOLUTION_FAILURE"
	OutcomeSocketFailure     Outcome = "SOCKET_FAILURE"
)

// ArpStatus is the terminal result of one ARP run.
type ArpStatus string

const (
	ArpSuccess           ArpStatus = "SUCCESS"
	ArpResolutionFailure ArpStatus = "RESOLUTION_FAILURE"
	ArpUnspecified       ArpStatus = "UNSPECIFIED"
)

var (
	ErrInvalidAddress = errors.New("invalid IP address")
	ErrResolution     = errors.New("failed getting target address info")
	ErrSocket         = errors.New("socket error")
	ErrNoMatch        = errors.New("no local interface shares the target subnet")
	ErrInject         = errors.New("frame injection failed")
)

// OutcomeFor maps an error returned by the echo probe path onto an Outcome.
// A nil error is not a valid input; callers decide between Up and NoResponse.
func OutcomeFor(err error) Outcome {
	switch {
	case errors.Is(err, ErrInvalidAddress):
		return OutcomeInvalidAddress
	case errors.Is(err, ErrResolution):
		return OutcomeResolutionFailure
	default:
		return OutcomeSocketFailure
	}
}

// ArpStatusFor maps an error returned by the ARP path onto an ArpStatus.
func ArpStatusFor(err error) ArpStatus {
	switch {
	case err == nil:
		return ArpSuccess
	case errors.Is(err, ErrInvalidAddress), errors.Is(err, ErrResolution):
		return ArpResolutionFailure
	default:
		return ArpUnspecified
	}
}

var outcomeMessages = map[Outcome]string{
	OutcomeUp:                "Host is up.",
	OutcomeNoResponse:        "No response from host.",
	OutcomeInvalidAddress:    "Invalid IP address.",
	OutcomeResolutionFailure: "Failed getting target address info.",
	OutcomeSocketFailure:     "Could not open or configure the network socket.",
}

var arpMessages = map[ArpStatus]string{
	ArpSuccess:           "ARP request prepared.",
	ArpResolutionFailure: "Failed getting target address info.",
	ArpUnspecified:       "ARP is not possible for the given target.",
}

// Message returns the human-readable text for an Outcome.
func Message(o Outcome) string {
	if msg, ok := outcomeMessages[o]; ok {
		return msg
	}
	return fmt.Sprintf("unknown outcome %q", string(o))
}

// ArpMessage returns the human-readable text for an ArpStatus.
func ArpMessage(s ArpStatus) string {
	if msg, ok := arpMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("unknown status %q", string(s))
}

// ExitCode maps an Outcome to a process exit code.
func ExitCode(o Outcome) int {
	switch o {
	case OutcomeUp:
		return 0
	case OutcomeNoResponse:
		return 1
	case OutcomeInvalidAddress:
		return 2
	case OutcomeResolutionFailure:
		return 3
	default:
		return 4
	}
}

// ArpExitCode maps an ArpStatus to a process exit code.
func ArpExitCode(s ArpStatus) int {
	switch s {
	case ArpSuccess:
		return 0
	case ArpResolutionFailure:
		return 3
	default:
		return 1
	}
}

// ProbeResult holds the outcome of a single probe run during a sweep.
type ProbeResult struct {
	Timestamp time.Time
	Address   string
	Outcome   Outcome
	Latency   time.Duration
	Error     error
}

// ToCSVRow converts a ProbeResult into a slice of strings for CSV writing.
func (r *ProbeResult) ToCSVRow() []string {
	outcome := string(r.Outcome)
	if r.Error != nil && r.Outcome != OutcomeUp && r.Outcome != OutcomeNoResponse {
		outcome = fmt.Sprintf("%s: %v", r.Outcome, r.Error)
	}
	return []string{
		r.Timestamp.Format(time.RFC3339),
		r.Address,
		outcome,
		fmt.Sprintf("%.2f", r.Latency.Seconds()*1000), // Latency in ms
	}
}

// CSVHeader returns the header row for the sweep results CSV file.
func CSVHeader() []string {
	return []string{"timestamp", "dst_ip", "outcome", "latency_ms"}
}
