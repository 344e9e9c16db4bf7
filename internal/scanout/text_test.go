package scanout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KilimcininKorOglu/sondaj/internal/probe"
)

func TestWriteVerdictNoColor(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Config{Colors: false})

	w.WriteVerdict(80, "tcp", probe.Open)
	w.WriteVerdict(443, "tcp", probe.Closed)
	w.WriteVerdict(53, "udp", probe.Filtered)

	out := buf.String()
	for _, want := range []string{"80/tcp", "open", "443/tcp", "closed", "53/udp", "filtered"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteVerdictColorsEnabled(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Config{Colors: true})

	w.WriteVerdict(22, "tcp", probe.Open)

	if buf.Len() == 0 {
		t.Fatal("expected output, got none")
	}
}

func TestWriteSummaryTally(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Config{Colors: false})

	w.WriteVerdict(80, "tcp", probe.Open)
	w.WriteVerdict(81, "tcp", probe.Open)
	w.WriteVerdict(82, "tcp", probe.Closed)
	w.WriteVerdict(83, "tcp", probe.Filtered)
	w.WriteSummary()

	out := buf.String()
	if !strings.Contains(out, "2 open, 1 closed, 1 filtered") {
		t.Errorf("unexpected summary line:\n%s", out)
	}
}
