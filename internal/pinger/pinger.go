package pinger

import (
	"errors"
	"log/slog"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"hostprobe/internal/models"
	"hostprobe/internal/resolver"
)

// DefaultTimeout bounds every receive made by the engine.
const DefaultTimeout = 2 * time.Second

// recvBufSize holds an IPv4 header with options plus an echo message.
const recvBufSize = 1500

var (
	errRecvTimeout   = errors.New("receive timed out")
	errEmptyDatagram = errors.New("empty datagram")
)

// Prober runs one bounded probe against a literal address.
type Prober interface {
	Ping(address string, tries int) (models.Outcome, error)
}

// Engine sends echo requests over a raw endpoint and waits for the matching
// reply. An Engine holds no per-run state and may be reused sequentially or
// from several goroutines.
type Engine struct {
	// ID is carried in the identifier field of every request.
	ID      uint16
	Timeout time.Duration
	Dial    Dialer
	Logger  *slog.Logger

	// OnSent and OnReply are optional observation hooks.
	OnSent  func(family resolver.Family, nBytes int)
	OnReply func(family resolver.Family, matched bool)
}

// NewEngine returns an Engine using id masked to 16 bits as its identifier.
func NewEngine(id int, logger *slog.Logger) *Engine {
	return &Engine{
		ID:      uint16(id & 0xffff),
		Timeout: DefaultTimeout,
		Dial:    DialRaw,
		Logger:  logger,
	}
}

// Ping probes address with at most tries echo requests. It returns Up on the
// first matching reply and NoResponse once every attempt is lost. Setup
// failures return the corresponding outcome together with the cause.
func (e *Engine) Ping(address string, tries int) (models.Outcome, error) {
	logger := e.Logger.With(
		slog.String("component", "pinger"),
		slog.String("run_id", uuid.NewString()),
		slog.String("target", address),
	)

	dst, err := resolver.Resolve(address)
	if err != nil {
		logger.Debug("Target rejected.", "error", err)
		return models.OutcomeFor(err), err
	}
	proto, err := resolver.LookupProtocol(dst.Family)
	if err != nil {
		logger.Debug("Protocol lookup failed.", "error", err)
		return models.OutcomeFor(err), err
	}

	conn, err := e.Dial(dst, proto, e.Timeout)
	if err != nil {
		logger.Debug("Failed to open raw endpoint.", "family", dst.Family, "protocol", proto, "error", err)
		return models.OutcomeFor(err), err
	}
	defer conn.Close()

	logger.Debug("Raw endpoint configured.", "family", dst.Family, "protocol", proto, "id", e.ID, "tries", tries, "timeout", e.Timeout)

	requestType, _ := echoTypes(dst.Family)
	buf := make([]byte, recvBufSize)
	var seq uint16
	for attempt := 1; attempt <= tries; attempt++ {
		seq++
		req := e.buildRequest(dst, conn.LocalAddr(), seq)
		if err := conn.Send(req); err != nil {
			logger.Debug("Send failed, attempt lost.", "attempt", attempt, "seq", seq, "error", err)
			continue
		}
		if e.OnSent != nil {
			e.OnSent(dst.Family, len(req))
		}

		reply, err := e.awaitReply(conn, dst.Family, buf, requestType)
		if err != nil {
			logger.Debug("No reply, attempt lost.", "attempt", attempt, "seq", seq, "error", err)
			continue
		}

		ok := matches(dst.Family, reply, e.ID, seq)
		if e.OnReply != nil {
			e.OnReply(dst.Family, ok)
		}
		if ok {
			logger.Debug("Matching echo reply received.", "attempt", attempt, "seq", seq)
			return models.OutcomeUp, nil
		}
		logger.Debug("Reply did not match, attempt lost.", "attempt", attempt, "seq", seq,
			"reply_type", reply.Type, "reply_id", reply.ID, "reply_seq", reply.Seq)
	}
	return models.OutcomeNoResponse, nil
}

func (e *Engine) buildRequest(dst resolver.Destination, local netip.Addr, seq uint16) []byte {
	if dst.Family == resolver.V6 {
		if !local.IsValid() {
			local = netip.IPv6Unspecified()
		}
		return buildRequestV6(local, dst.Addr, e.ID, seq)
	}
	return buildRequestV4(e.ID, seq)
}

// awaitReply receives one datagram. When the datagram is our own request
// looped back (common on loopback), exactly one more receive replaces it.
func (e *Engine) awaitReply(conn Conn, f resolver.Family, buf []byte, requestType int) (Echo, error) {
	reply, err := receive(conn, f, buf)
	if err != nil {
		return Echo{}, err
	}
	if reply.Type != requestType {
		return reply, nil
	}
	return receive(conn, f, buf)
}

func receive(conn Conn, f resolver.Family, buf []byte) (Echo, error) {
	n, err := conn.Recv(buf)
	if err != nil {
		return Echo{}, err
	}
	if n == 0 {
		return Echo{}, errEmptyDatagram
	}
	return parseDatagram(f, buf[:n])
}
