// Package metrics counts probe traffic and outcomes and exports them as a
// Prometheus textfile.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PromLabelFamily   = "family"
	PromLabelMatched  = "matched"
	PromLabelCommand  = "command"
	PromLabelOutcome  = "outcome"
	PromLabelInjected = "injected"
)

// CounterStore holds every counter on its own registry, so one process run
// exports only what it did.
type CounterStore struct {
	Registry *prometheus.Registry

	EchoRequestsSent *prometheus.CounterVec
	EchoReplies      *prometheus.CounterVec
	Outcomes         *prometheus.CounterVec
	ArpFrames        *prometheus.CounterVec
}

func NewCounterStore() *CounterStore {
	cs := &CounterStore{Registry: prometheus.NewRegistry()}

	cs.EchoRequestsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostprobe_echo_requests_sent_total",
			Help: "The number of echo requests written to the network",
		},
		[]string{PromLabelFamily},
	)
	cs.EchoReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostprobe_echo_replies_received_total",
			Help: "The number of echo datagrams received, by whether they matched the outstanding request",
		},
		[]string{PromLabelFamily, PromLabelMatched},
	)
	cs.Outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostprobe_outcomes_total",
			Help: "The number of finished probe runs by outcome",
		},
		[]string{PromLabelCommand, PromLabelOutcome},
	)
	cs.ArpFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostprobe_arp_frames_total",
			Help: "The number of ARP request frames built, by whether they were injected",
		},
		[]string{PromLabelInjected},
	)

	cs.Registry.MustRegister(cs.EchoRequestsSent, cs.EchoReplies, cs.Outcomes, cs.ArpFrames)
	return cs
}

// EchoSent counts one echo request of the given family ("ip4" or "ip6").
func (cs *CounterStore) EchoSent(family string) {
	cs.EchoRequestsSent.With(prometheus.Labels{PromLabelFamily: family}).Inc()
}

// EchoReceived counts one received datagram.
func (cs *CounterStore) EchoReceived(family string, matched bool) {
	cs.EchoReplies.With(prometheus.Labels{
		PromLabelFamily:  family,
		PromLabelMatched: strconv.FormatBool(matched),
	}).Inc()
}

// Outcome counts one finished run of command.
func (cs *CounterStore) Outcome(command, outcome string) {
	cs.Outcomes.With(prometheus.Labels{PromLabelCommand: command, PromLabelOutcome: outcome}).Inc()
}

// ArpFrame counts one built ARP frame.
func (cs *CounterStore) ArpFrame(injected bool) {
	cs.ArpFrames.With(prometheus.Labels{PromLabelInjected: strconv.FormatBool(injected)}).Inc()
}

// WriteTextfile writes the registry in the text exposition format, atomically, for
// node_exporter's textfile collector.
func (cs *CounterStore) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, cs.Registry)
}
