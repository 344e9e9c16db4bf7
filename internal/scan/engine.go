package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KilimcininKorOglu/sondaj/internal/probe"
)

// VerdictFunc receives one completed port verdict, called in probe order.
type VerdictFunc func(port int, proto string, verdict probe.Verdict)

// Engine runs a Job's probes against a sequence of ports. One Engine
// corresponds to exactly one (interface, family, protocol) combination;
// scanning both TCP and UDP, or both address families, means building
// two Engines.
type Engine struct {
	job      Job
	ctx      *probe.ProbeContext
	strategy probe.Strategy
}

// New opens the raw socket(s) for job and constructs the Engine. Socket
// construction failures are fatal for this (interface, family, protocol)
// combination, per the error-handling design.
func New(job Job) (*Engine, error) {
	strategy, sendProto, recvProto := selectStrategy(job.Protocol, job.Dest.IsIPv6())

	sendSock, err := probe.OpenRawSocket(job.Interface, job.Dest.Family(), sendProto)
	if err != nil {
		return nil, err
	}

	recvSock := sendSock
	if recvProto != sendProto {
		recvSock, err = probe.OpenRawSocket(job.Interface, job.Dest.Family(), recvProto)
		if err != nil {
			sendSock.Close()
			return nil, err
		}
	}

	ctx := probe.NewProbeContext(job.Source, job.Dest, sendSock, recvSock)
	return &Engine{job: job, ctx: ctx, strategy: strategy}, nil
}

func selectStrategy(proto Protocol, isIPv6 bool) (strategy probe.Strategy, sendProto, recvProto int) {
	if proto == TCP {
		return probe.TCPStrategy{}, probe.ProtocolTCP, probe.ProtocolTCP
	}
	recvProto = probe.ProtocolICMP
	if isIPv6 {
		recvProto = probe.ProtocolICMPv6
	}
	return probe.UDPStrategy{}, probe.ProtocolUDP, recvProto
}

// Close releases the Engine's sockets.
func (e *Engine) Close() error {
	return e.ctx.Close()
}

// ScanPorts probes each port in order, invoking emit once per completed
// port. It stops and returns an error on the first fatal condition
// (socket failure, signal/cancellation); classification ambiguity never
// stops the scan, it only yields a policy verdict.
func (e *Engine) ScanPorts(ctx context.Context, ports []int, emit VerdictFunc) error {
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.scanPort(ctx, port, emit); err != nil {
			if errors.Is(err, probe.ErrPollInterrupted) || errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("port %d: %w", port, err)
		}
	}
	return nil
}

func (e *Engine) scanPort(ctx context.Context, port int, emit VerdictFunc) error {
	if err := e.enforceRateLimit(ctx); err != nil {
		return err
	}

	e.ctx.SetTargetPort(port)

	waitDur := time.Duration(e.job.WaitMs) * time.Millisecond
	deadline := time.Now().Add(waitDur)
	retransUsed := 0

	if err := e.sendProbe(); err != nil {
		return err
	}

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		ready, err := e.ctx.PollReadable(ctx, remaining)
		if err != nil {
			return err
		}

		if !ready {
			if retransUsed < e.job.Retransmissions {
				if err := e.sendProbe(); err != nil {
					return err
				}
				retransUsed++
				deadline = time.Now().Add(waitDur)
				continue
			}
			emit(port, e.strategy.Name(), e.strategy.OnTimeout())
			return nil
		}

		n, src, err := e.ctx.Recv()
		if err != nil {
			if probe.IsWouldBlock(err) {
				continue
			}
			continue
		}

		if !src.IP().Equal(e.job.Dest.IP()) {
			continue // foreign packet: does not consume the retransmission budget
		}

		buf := e.ctx.RecvBuf()[:n]
		if needsIPv4HeaderStrip(e.job.Dest.IsIPv6()) {
			buf = stripIPv4Header(buf)
		}

		outcome := e.strategy.Classify(e.ctx, buf, src)
		switch outcome.Kind {
		case probe.Incomplete:
			continue
		case probe.Retransmit:
			if err := e.sendProbe(); err != nil {
				return err
			}
			deadline = time.Now().Add(waitDur)
			continue
		case probe.Fatal:
			return outcome.Err
		default: // probe.Done
			emit(port, e.strategy.Name(), outcome.Verdict)
			return nil
		}
	}
}

func (e *Engine) sendProbe() error {
	packet := e.strategy.Build(e.ctx)
	if err := e.ctx.Send(packet); err != nil {
		return err
	}
	e.ctx.MarkProbeSent(time.Now())
	return nil
}

func (e *Engine) enforceRateLimit(ctx context.Context) error {
	gap := time.Duration(e.job.RateLimitMs) * time.Millisecond
	if gap <= 0 {
		return nil
	}
	elapsed := time.Since(e.ctx.LastProbe())
	if elapsed >= gap {
		return nil
	}
	select {
	case <-time.After(gap - elapsed):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// needsIPv4HeaderStrip reports whether a received buffer still carries
// the outer IPv4 header. A raw socket prepends it on receive for every
// transport protocol (TCP and UDP/ICMP alike) regardless of IP_HDRINCL,
// which only governs sends; IPv6 raw sockets never include it.
func needsIPv4HeaderStrip(isIPv6 bool) bool {
	return !isIPv6
}

// stripIPv4Header removes the IHL*4-byte IPv4 header a raw socket
// prepends to a received IPv4 datagram.
func stripIPv4Header(buf []byte) []byte {
	if len(buf) < 1 {
		return buf
	}
	ihl := int(buf[0]&0x0f) * 4
	if ihl < 20 || ihl > len(buf) {
		return buf
	}
	return buf[ihl:]
}
