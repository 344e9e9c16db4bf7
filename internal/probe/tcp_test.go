package probe

import (
	"net"
	"testing"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

func newTestTCPContext(t *testing.T, srcPort, dstPort int) *ProbeContext {
	t.Helper()
	src, err := endpoint.New(net.ParseIP("192.168.1.1"), srcPort)
	if err != nil {
		t.Fatalf("endpoint.New(src) error: %v", err)
	}
	dst, err := endpoint.New(net.ParseIP("8.8.8.8"), dstPort)
	if err != nil {
		t.Fatalf("endpoint.New(dst) error: %v", err)
	}
	return NewProbeContext(src, dst, nil, nil)
}

func TestTCPStrategy_Build(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	packet := TCPStrategy{}.Build(ctx)

	if len(packet) != tcpHeaderLen {
		t.Fatalf("len(packet) = %d, want %d", len(packet), tcpHeaderLen)
	}

	srcPort := uint16(packet[0])<<8 | uint16(packet[1])
	if srcPort != 57489 {
		t.Errorf("source port = %d, want 57489", srcPort)
	}

	dstPort := uint16(packet[2])<<8 | uint16(packet[3])
	if dstPort != 80 {
		t.Errorf("destination port = %d, want 80", dstPort)
	}

	if packet[13] != tcpFlagSYN {
		t.Errorf("flags = 0x%02x, want 0x%02x (SYN)", packet[13], tcpFlagSYN)
	}

	if dataOffset := packet[12] >> 4; dataOffset != 5 {
		t.Errorf("data offset = %d, want 5", dataOffset)
	}

	window := uint16(packet[14])<<8 | uint16(packet[15])
	if window != 0xffff {
		t.Errorf("window = 0x%04x, want 0xffff", window)
	}

	if !ValidateChecksum(append(pseudoHeaderFor(t, ctx, packet), packet...)) {
		t.Error("TCP checksum does not validate against its pseudo-header")
	}
}

// pseudoHeaderFor rebuilds the pseudo-header the same way Build did, for
// checksum verification in tests.
func pseudoHeaderFor(t *testing.T, ctx *ProbeContext, segment []byte) []byte {
	t.Helper()
	buf := make([]byte, pseudoHeaderLenV4)
	writePseudoHeaderV4(buf, ctx.Source.IP(), ctx.Dest.IP(), 6, len(segment))
	return buf
}

func TestTCPStrategy_Build_SequenceIncrements(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	first := TCPStrategy{}.Build(ctx)
	second := TCPStrategy{}.Build(ctx)

	seqOf := func(p []byte) uint32 {
		return uint32(p[4])<<24 | uint32(p[5])<<16 | uint32(p[6])<<8 | uint32(p[7])
	}

	if seqOf(first) == seqOf(second) {
		t.Error("sequence number did not change between builds")
	}
}

func TestTCPStrategy_Classify_RST(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	ctx.SetTargetPort(80)

	resp := make([]byte, tcpHeaderLen)
	resp[0], resp[1] = byte(80>>8), byte(80&0xff)       // src port = target port
	resp[2], resp[3] = byte(57489>>8), byte(57489&0xff) // dst port = our source port
	resp[13] = tcpFlagRST

	outcome := TCPStrategy{}.Classify(ctx, resp, endpoint.Endpoint{})
	if outcome.Kind != Done || outcome.Verdict != Closed {
		t.Errorf("Classify(RST) = %+v, want Done(Closed)", outcome)
	}
}

func TestTCPStrategy_Classify_SYNACK(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	ctx.SetTargetPort(80)

	resp := make([]byte, tcpHeaderLen)
	resp[0], resp[1] = byte(80>>8), byte(80&0xff)
	resp[2], resp[3] = byte(57489>>8), byte(57489&0xff)
	resp[13] = tcpFlagSYN | tcpFlagACK

	outcome := TCPStrategy{}.Classify(ctx, resp, endpoint.Endpoint{})
	if outcome.Kind != Done || outcome.Verdict != Open {
		t.Errorf("Classify(SYN|ACK) = %+v, want Done(Open)", outcome)
	}
}

func TestTCPStrategy_Classify_TooShort(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	outcome := TCPStrategy{}.Classify(ctx, make([]byte, 10), endpoint.Endpoint{})
	if outcome.Kind != Incomplete {
		t.Errorf("Classify(short buf) kind = %v, want Incomplete", outcome.Kind)
	}
}

func TestTCPStrategy_Classify_WrongPort(t *testing.T) {
	ctx := newTestTCPContext(t, 57489, 80)
	ctx.SetTargetPort(80)

	resp := make([]byte, tcpHeaderLen)
	resp[0], resp[1] = byte(443>>8), byte(443&0xff) // unrelated src port
	resp[2], resp[3] = byte(57489>>8), byte(57489&0xff)
	resp[13] = tcpFlagSYN | tcpFlagACK

	outcome := TCPStrategy{}.Classify(ctx, resp, endpoint.Endpoint{})
	if outcome.Kind != Incomplete {
		t.Errorf("Classify(unrelated port) kind = %v, want Incomplete", outcome.Kind)
	}
}

func TestTCPStrategy_OnTimeout(t *testing.T) {
	if got := (TCPStrategy{}).OnTimeout(); got != Filtered {
		t.Errorf("OnTimeout() = %v, want Filtered", got)
	}
}

func TestTCPStrategy_Name(t *testing.T) {
	if got := (TCPStrategy{}).Name(); got != "tcp" {
		t.Errorf("Name() = %q, want %q", got, "tcp")
	}
}
