package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterStore(t *testing.T) {
	cs := NewCounterStore()

	cs.EchoSent("ip4")
	cs.EchoSent("ip4")
	cs.EchoSent("ip6")
	cs.EchoReceived("ip4", true)
	cs.EchoReceived("ip4", false)
	cs.Outcome("ping", "UP")
	cs.ArpFrame(false)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ip4 sent", testutil.ToFloat64(cs.EchoRequestsSent.WithLabelValues("ip4")), 2},
		{"ip6 sent", testutil.ToFloat64(cs.EchoRequestsSent.WithLabelValues("ip6")), 1},
		{"ip4 matched", testutil.ToFloat64(cs.EchoReplies.WithLabelValues("ip4", "true")), 1},
		{"ip4 unmatched", testutil.ToFloat64(cs.EchoReplies.WithLabelValues("ip4", "false")), 1},
		{"ping up", testutil.ToFloat64(cs.Outcomes.WithLabelValues("ping", "UP")), 1},
		{"arp dry run", testutil.ToFloat64(cs.ArpFrames.WithLabelValues("false")), 1},
		{"arp injected", testutil.ToFloat64(cs.ArpFrames.WithLabelValues("true")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCounterStore_Independent(t *testing.T) {
	// Two stores must not collide on registration.
	a, b := NewCounterStore(), NewCounterStore()
	a.Outcome("arp", "SUCCESS")
	if got := testutil.ToFloat64(b.Outcomes.WithLabelValues("arp", "SUCCESS")); got != 0 {
		t.Errorf("second store saw %v, want 0", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	cs := NewCounterStore()
	cs.EchoSent("ip6")
	cs.Outcome("sweep", "NO_RESPONSE")

	path := filepath.Join(t.TempDir(), "hostprobe.prom")
	if err := cs.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	for _, want := range []string{
		`hostprobe_echo_requests_sent_total{family="ip6"} 1`,
		`hostprobe_outcomes_total{command="sweep",outcome="NO_RESPONSE"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
