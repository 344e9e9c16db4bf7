package probe

import (
	"encoding/binary"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// udpHeaderLen is the fixed zero-payload UDP segment this scanner builds.
const udpHeaderLen = 8

const (
	icmpv4CodePortUnreachable = 3
	icmpv6CodePortUnreachable = 4

	ipv4HeaderMinLen = 20
)

// UDPStrategy implements Strategy for an ICMP-unreachable scan: send a
// zero-payload datagram, and treat a Port Unreachable ICMP/ICMPv6 error
// quoting our probe as closed; anything else within the wait is
// inconclusive, and the protocol's own silence means open. Grounded on
// the teacher's buildPayload / matchResponseIPv4 / matchResponseIPv6 /
// matchOriginalUDP in the original internal/probe/udp.go.
type UDPStrategy struct{}

// Build encodes an 8-byte zero-payload UDP datagram with its checksum
// filled in.
func (UDPStrategy) Build(ctx *ProbeContext) []byte {
	seg := make([]byte, udpHeaderLen)

	binary.BigEndian.PutUint16(seg[0:2], uint16(ctx.Source.Port()))
	binary.BigEndian.PutUint16(seg[2:4], uint16(ctx.Dest.Port()))
	binary.BigEndian.PutUint16(seg[4:6], udpHeaderLen)
	binary.BigEndian.PutUint16(seg[6:8], 0) // checksum placeholder

	checksum := ChecksumWithPseudoHeader(ctx.Scratch(), ctx.Dest.IsIPv6(), ctx.Source.IP(), ctx.Dest.IP(), 17, seg)
	binary.BigEndian.PutUint16(seg[6:8], checksum)

	return seg
}

// Classify parses a received ICMP/ICMPv6 message and looks for a Port
// Unreachable quoting our probe's destination port.
func (UDPStrategy) Classify(ctx *ProbeContext, buf []byte, src endpoint.Endpoint) ProbeOutcome {
	proto := 1
	if ctx.Dest.IsIPv6() {
		proto = 58
	}

	msg, err := icmp.ParseMessage(proto, buf)
	if err != nil {
		return IncompleteOutcome()
	}

	var quoted []byte
	if ctx.Dest.IsIPv6() {
		if msg.Type != ipv6.ICMPTypeDestinationUnreachable || msg.Code != icmpv6CodePortUnreachable {
			return IncompleteOutcome()
		}
		body, ok := msg.Body.(*icmp.DstUnreach)
		if !ok {
			return IncompleteOutcome()
		}
		quoted = body.Data
	} else {
		if msg.Type != ipv4.ICMPTypeDestinationUnreachable || msg.Code != icmpv4CodePortUnreachable {
			return IncompleteOutcome()
		}
		body, ok := msg.Body.(*icmp.DstUnreach)
		if !ok {
			return IncompleteOutcome()
		}
		quoted = body.Data
	}

	port, ok := quotedUDPDestPort(quoted, ctx.Dest.IsIPv6())
	if !ok {
		return IncompleteOutcome()
	}
	if port != ctx.TargetPort() {
		return IncompleteOutcome()
	}
	return DoneOutcome(Closed)
}

// quotedUDPDestPort locates the destination port of the UDP header quoted
// inside an ICMP error payload. For IPv4 the payload is the original IP
// header (IHL*4 bytes) followed by at least 8 bytes of UDP; for IPv6 the
// inner IPv6 header is a fixed 40 bytes.
func quotedUDPDestPort(data []byte, isIPv6 bool) (int, bool) {
	if isIPv6 {
		const ipv6HeaderLen = 40
		if len(data) < ipv6HeaderLen+udpHeaderLen {
			return 0, false
		}
		udpHeader := data[ipv6HeaderLen:]
		return int(binary.BigEndian.Uint16(udpHeader[2:4])), true
	}

	if len(data) < ipv4HeaderMinLen+4 {
		return 0, false
	}
	ihl := int(data[0]&0x0f) * 4
	if ihl < ipv4HeaderMinLen || len(data) < ihl+4 {
		return 0, false
	}
	udpHeader := data[ihl:]
	return int(binary.BigEndian.Uint16(udpHeader[2:4])), true
}

// OnTimeout reports Open: no ICMP Port Unreachable within the
// retransmission budget means the datagram was accepted (or silently
// dropped by a filter we cannot distinguish from an open port), which is
// the nmap convention for UDP scans.
func (UDPStrategy) OnTimeout() Verdict { return Open }

// Name identifies the protocol for output lines.
func (UDPStrategy) Name() string { return "udp" }
