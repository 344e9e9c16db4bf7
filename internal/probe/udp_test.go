package probe

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

func newTestUDPContext(t *testing.T, srcPort, dstPort int, ipv6 bool) *ProbeContext {
	t.Helper()
	srcIP, dstIP := "192.168.1.1", "8.8.8.8"
	if ipv6 {
		srcIP, dstIP = "::1", "2001:4860:4860::8888"
	}
	src, err := endpoint.New(net.ParseIP(srcIP), srcPort)
	if err != nil {
		t.Fatalf("endpoint.New(src) error: %v", err)
	}
	dst, err := endpoint.New(net.ParseIP(dstIP), dstPort)
	if err != nil {
		t.Fatalf("endpoint.New(dst) error: %v", err)
	}
	return NewProbeContext(src, dst, nil, nil)
}

func TestUDPStrategy_Build(t *testing.T) {
	ctx := newTestUDPContext(t, 57489, 53, false)
	packet := UDPStrategy{}.Build(ctx)

	if len(packet) != udpHeaderLen {
		t.Fatalf("len(packet) = %d, want %d", len(packet), udpHeaderLen)
	}

	srcPort := binary.BigEndian.Uint16(packet[0:2])
	if srcPort != 57489 {
		t.Errorf("source port = %d, want 57489", srcPort)
	}

	dstPort := binary.BigEndian.Uint16(packet[2:4])
	if dstPort != 53 {
		t.Errorf("destination port = %d, want 53", dstPort)
	}

	if length := binary.BigEndian.Uint16(packet[4:6]); length != udpHeaderLen {
		t.Errorf("length field = %d, want %d", length, udpHeaderLen)
	}

	verify := make([]byte, pseudoHeaderLenV4)
	writePseudoHeaderV4(verify, ctx.Source.IP(), ctx.Dest.IP(), 17, len(packet))
	verify = append(verify, packet...)
	if !ValidateChecksum(verify) {
		t.Error("UDP checksum does not validate against its pseudo-header")
	}
}

func TestUDPStrategy_Classify_PortUnreachableIPv4(t *testing.T) {
	ctx := newTestUDPContext(t, 57489, 54321, false)
	ctx.SetTargetPort(54321)

	// ICMP type=3 (dest unreachable) code=3 (port unreachable), 8-byte
	// body header, then a quoted 20-byte IPv4 header + 8-byte UDP header
	// whose destination port is 54321.
	icmpMsg := make([]byte, 8+20+8)
	icmpMsg[0] = 3    // type
	icmpMsg[1] = 3    // code
	icmpMsg[8] = 0x45 // quoted IPv4 header: version 4, IHL 5 (20 bytes)
	binary.BigEndian.PutUint16(icmpMsg[8+20+2:8+20+4], 54321)

	outcome := UDPStrategy{}.Classify(ctx, icmpMsg, endpoint.Endpoint{})
	if outcome.Kind != Done || outcome.Verdict != Closed {
		t.Errorf("Classify(port unreachable) = %+v, want Done(Closed)", outcome)
	}
}

func TestUDPStrategy_Classify_WrongPort(t *testing.T) {
	ctx := newTestUDPContext(t, 57489, 54321, false)
	ctx.SetTargetPort(54321)

	icmpMsg := make([]byte, 8+20+8)
	icmpMsg[0] = 3
	icmpMsg[1] = 3
	icmpMsg[8] = 0x45
	binary.BigEndian.PutUint16(icmpMsg[8+20+2:8+20+4], 9999) // unrelated port

	outcome := UDPStrategy{}.Classify(ctx, icmpMsg, endpoint.Endpoint{})
	if outcome.Kind != Incomplete {
		t.Errorf("Classify(unrelated port) kind = %v, want Incomplete", outcome.Kind)
	}
}

func TestUDPStrategy_Classify_WrongCode(t *testing.T) {
	ctx := newTestUDPContext(t, 57489, 54321, false)
	ctx.SetTargetPort(54321)

	icmpMsg := make([]byte, 8+20+8)
	icmpMsg[0] = 3
	icmpMsg[1] = 1 // host unreachable, not port unreachable
	binary.BigEndian.PutUint16(icmpMsg[8+20+2:8+20+4], 54321)

	outcome := UDPStrategy{}.Classify(ctx, icmpMsg, endpoint.Endpoint{})
	if outcome.Kind != Incomplete {
		t.Errorf("Classify(wrong code) kind = %v, want Incomplete", outcome.Kind)
	}
}

func TestUDPStrategy_Classify_Truncated(t *testing.T) {
	ctx := newTestUDPContext(t, 57489, 54321, false)
	ctx.SetTargetPort(54321)

	// Too short to contain a quoted UDP header.
	icmpMsg := make([]byte, 8+20+2)
	icmpMsg[0] = 3
	icmpMsg[1] = 3

	outcome := UDPStrategy{}.Classify(ctx, icmpMsg, endpoint.Endpoint{})
	if outcome.Kind != Incomplete {
		t.Errorf("Classify(truncated) kind = %v, want Incomplete", outcome.Kind)
	}
}

func TestUDPStrategy_OnTimeout(t *testing.T) {
	if got := (UDPStrategy{}).OnTimeout(); got != Open {
		t.Errorf("OnTimeout() = %v, want Open", got)
	}
}

func TestUDPStrategy_Name(t *testing.T) {
	if got := (UDPStrategy{}).Name(); got != "udp" {
		t.Errorf("Name() = %q, want %q", got, "udp")
	}
}

func TestQuotedUDPDestPortIPv6(t *testing.T) {
	data := make([]byte, 40+8)
	binary.BigEndian.PutUint16(data[40+2:40+4], 9999)

	port, ok := quotedUDPDestPort(data, true)
	if !ok {
		t.Fatal("quotedUDPDestPort() ok = false, want true")
	}
	if port != 9999 {
		t.Errorf("port = %d, want 9999", port)
	}
}
