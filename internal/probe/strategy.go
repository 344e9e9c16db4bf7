// Package probe implements the raw-socket scanning core: Internet
// checksum computation over IPv4/IPv6 pseudo-headers, the platform
// raw-socket layer, and the TCP SYN / UDP probe builders and response
// classifiers the scanner engine drives.
package probe

import (
	"context"
	"time"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// Verdict is the per-port classification result.
type Verdict int

const (
	Open Verdict = iota
	Closed
	Filtered
)

// String renders the verdict the way it appears in a scan's output line.
func (v Verdict) String() string {
	switch v {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Filtered:
		return "filtered"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies what a Strategy's Classify call decided.
type OutcomeKind int

const (
	// Incomplete means keep polling; this packet was not conclusive.
	Incomplete OutcomeKind = iota
	// Retransmit means resend the probe and reset the deadline.
	Retransmit
	// Done means a verdict was reached.
	Done
	// Fatal means the port cannot be scanned further.
	Fatal
)

// ProbeOutcome is the result of one Classify call or one engine decision
// point. Exactly one of Verdict/Err is meaningful, depending on Kind.
type ProbeOutcome struct {
	Kind    OutcomeKind
	Verdict Verdict
	Err     error
}

// IncompleteOutcome reports that the engine should keep polling without
// consuming its retransmission budget.
func IncompleteOutcome() ProbeOutcome { return ProbeOutcome{Kind: Incomplete} }

// RetransmitOutcome reports that the probe should be resent.
func RetransmitOutcome() ProbeOutcome { return ProbeOutcome{Kind: Retransmit} }

// DoneOutcome reports a final verdict for the port under test.
func DoneOutcome(v Verdict) ProbeOutcome { return ProbeOutcome{Kind: Done, Verdict: v} }

// FatalOutcome reports that the port cannot be scanned; err explains why.
func FatalOutcome(err error) ProbeOutcome { return ProbeOutcome{Kind: Fatal, Err: err} }

// Strategy is the per-protocol probe builder and response classifier the
// scanner engine is generic over. A TCP strategy and a UDP strategy each
// implement it; the engine itself knows nothing about wire formats.
type Strategy interface {
	// Build encodes one probe packet for ctx's current target port.
	Build(ctx *ProbeContext) []byte

	// Classify interprets one received datagram (with any outer IPv4
	// header already stripped by the engine) and decides the outcome.
	Classify(ctx *ProbeContext, buf []byte, src endpoint.Endpoint) ProbeOutcome

	// OnTimeout is the verdict to report once the retransmission budget
	// is exhausted without a conclusive response.
	OnTimeout() Verdict

	// Name identifies the protocol for output lines ("tcp" or "udp").
	Name() string
}

// ProbeContext is the live, per-scan state threaded through a Strategy:
// the bound sockets, the current target endpoint, and the scratch
// buffers that let Build/Classify avoid allocating on the hot path.
type ProbeContext struct {
	Source endpoint.Endpoint
	Dest   endpoint.Endpoint

	send *RawSocket
	recv *RawSocket

	sequence  uint32
	lastProbe time.Time

	scratch []byte // checksum arena
	recvBuf []byte // fixed-size receive buffer
}

// arenaSize is 8 KiB, comfortably larger than the worst case this tool
// checksums: IPv6's 40-byte pseudo-header plus a 20-byte TCP or 8-byte UDP
// probe.
const arenaSize = 8 * 1024

// NewProbeContext builds a ProbeContext over already-open sockets. send
// and recv may be the same socket (TCP) or different ones (UDP send vs.
// ICMP receive); Close releases each descriptor exactly once either way.
func NewProbeContext(source, dest endpoint.Endpoint, send, recv *RawSocket) *ProbeContext {
	return &ProbeContext{
		Source:  source,
		Dest:    dest,
		send:    send,
		recv:    recv,
		scratch: make([]byte, arenaSize),
		recvBuf: make([]byte, arenaSize),
	}
}

// NextSequence returns the next per-probe sequence number, starting at 0
// and wrapping freely on overflow.
func (c *ProbeContext) NextSequence() uint32 {
	seq := c.sequence
	c.sequence++
	return seq
}

// Scratch returns the checksum arena owned by this context.
func (c *ProbeContext) Scratch() []byte { return c.scratch }

// RecvBuf returns the fixed-size receive buffer owned by this context.
func (c *ProbeContext) RecvBuf() []byte { return c.recvBuf }

// SetTargetPort mutates the destination endpoint's port to the port
// currently under test. This is the only place the destination's port
// changes during a scan.
func (c *ProbeContext) SetTargetPort(port int) {
	c.Dest = c.Dest.WithPort(port)
}

// TargetPort returns the port currently under test.
func (c *ProbeContext) TargetPort() int { return c.Dest.Port() }

// Send writes b to the context's destination.
func (c *ProbeContext) Send(b []byte) error {
	return c.send.SendTo(b, c.Dest)
}

// Recv reads one datagram into the context's receive buffer.
func (c *ProbeContext) Recv() (int, endpoint.Endpoint, error) {
	return c.recv.RecvFrom(c.recvBuf)
}

// PollReadable waits for the receive socket to become readable.
func (c *ProbeContext) PollReadable(ctx context.Context, timeout time.Duration) (bool, error) {
	return c.recv.PollReadable(ctx, timeout)
}

// LastProbe returns the timestamp of the most recent send, for rate
// limiting between ports.
func (c *ProbeContext) LastProbe() time.Time { return c.lastProbe }

// MarkProbeSent records now as the last-probe timestamp.
func (c *ProbeContext) MarkProbeSent(now time.Time) { c.lastProbe = now }

// Close releases both sockets. Safe to call once the context is done
// with, even if Send and Recv are backed by the same descriptor.
func (c *ProbeContext) Close() error {
	var first error
	if c.send != nil {
		if err := c.send.Close(); err != nil {
			first = err
		}
	}
	if c.recv != nil && c.recv != c.send {
		if err := c.recv.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
