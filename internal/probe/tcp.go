package probe

import (
	"encoding/binary"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// tcpHeaderLen is the fixed segment length this scanner ever builds: no
// TCP options are set.
const tcpHeaderLen = 20

const (
	tcpFlagSYN = 0x02
	tcpFlagACK = 0x10
	tcpFlagRST = 0x04
)

// TCPStrategy implements Strategy for a SYN scan: send a bare SYN,
// classify the destination by its first conclusive response (RST =
// closed, SYN|ACK = open), grounded on the teacher's buildSYNPacket /
// tcpChecksum / parseTCPResponse in the original internal/probe/tcp.go.
type TCPStrategy struct{}

// Build encodes a 20-byte TCP SYN segment with its checksum filled in.
func (TCPStrategy) Build(ctx *ProbeContext) []byte {
	seg := make([]byte, tcpHeaderLen)

	binary.BigEndian.PutUint16(seg[0:2], uint16(ctx.Source.Port()))
	binary.BigEndian.PutUint16(seg[2:4], uint16(ctx.Dest.Port()))
	binary.BigEndian.PutUint32(seg[4:8], ctx.NextSequence())
	binary.BigEndian.PutUint32(seg[8:12], 0) // ack number
	seg[12] = 0x50                           // data offset = 5, no options
	seg[13] = tcpFlagSYN
	binary.BigEndian.PutUint16(seg[14:16], 0xffff) // window
	binary.BigEndian.PutUint16(seg[16:18], 0)       // checksum placeholder
	binary.BigEndian.PutUint16(seg[18:20], 0)       // urgent pointer

	checksum := ChecksumWithPseudoHeader(ctx.Scratch(), ctx.Dest.IsIPv6(), ctx.Source.IP(), ctx.Dest.IP(), 6, seg)
	binary.BigEndian.PutUint16(seg[16:18], checksum)

	return seg
}

// Classify interprets a received TCP segment. RST means closed, SYN+ACK
// means open, and any other flag pattern means filtered. A segment too
// short to be a TCP header, or one whose ports do not match the probe,
// keeps polling.
func (TCPStrategy) Classify(ctx *ProbeContext, buf []byte, src endpoint.Endpoint) ProbeOutcome {
	if len(buf) < tcpHeaderLen {
		return IncompleteOutcome()
	}

	srcPort := binary.BigEndian.Uint16(buf[0:2])
	dstPort := binary.BigEndian.Uint16(buf[2:4])
	flags := buf[13]

	if int(srcPort) != ctx.TargetPort() || int(dstPort) != ctx.Source.Port() {
		return IncompleteOutcome()
	}

	switch {
	case flags&tcpFlagRST != 0:
		return DoneOutcome(Closed)
	case flags&(tcpFlagSYN|tcpFlagACK) == (tcpFlagSYN | tcpFlagACK):
		return DoneOutcome(Open)
	default:
		return DoneOutcome(Filtered)
	}
}

// OnTimeout reports Filtered: no RST and no SYN-ACK within the
// retransmission budget means something between us and the host is
// dropping the probe or its reply.
func (TCPStrategy) OnTimeout() Verdict { return Filtered }

// Name identifies the protocol for output lines.
func (TCPStrategy) Name() string { return "tcp" }
