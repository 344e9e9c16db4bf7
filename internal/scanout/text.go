// Package scanout renders scan verdicts as they are produced: one
// colorized line per port, in probe order, plus a short summary line.
package scanout

import (
	"bytes"
	"fmt"
	"io"

	"github.com/KilimcininKorOglu/sondaj/internal/probe"
	"github.com/fatih/color"
)

// Config controls how verdict lines are rendered.
type Config struct {
	// Colors enables ANSI coloring of verdict lines.
	Colors bool
}

// Writer streams verdict lines to an underlying io.Writer.
type Writer struct {
	w      io.Writer
	colors *ColorScheme

	open, closed, filtered int
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer, config Config) *Writer {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}
	return &Writer{w: w, colors: colors}
}

// WriteVerdict writes one "<port>/<proto> <verdict>" line and updates
// the running open/closed/filtered tally.
func (f *Writer) WriteVerdict(port int, proto string, verdict probe.Verdict) {
	switch verdict {
	case probe.Open:
		f.open++
	case probe.Closed:
		f.closed++
	case probe.Filtered:
		f.filtered++
	}

	var buf bytes.Buffer
	f.formatVerdict(&buf, port, proto, verdict)
	io.Copy(f.w, &buf)
}

func (f *Writer) formatVerdict(buf *bytes.Buffer, port int, proto string, verdict probe.Verdict) {
	portStr := fmt.Sprintf("%d/%s", port, proto)
	if f.colors != nil {
		portStr = f.colors.Port.Sprint(portStr)
	}

	verdictStr := verdict.String()
	if f.colors != nil {
		verdictStr = f.colorizeVerdict(verdict)
	}

	fmt.Fprintf(buf, "%s %s\n", portStr, verdictStr)
}

// colorizeVerdict colors a verdict string by its meaning: green for
// open, red for closed, yellow for filtered.
func (f *Writer) colorizeVerdict(verdict probe.Verdict) string {
	str := verdict.String()
	switch verdict {
	case probe.Open:
		return f.colors.Open.Sprint(str)
	case probe.Closed:
		return f.colors.Closed.Sprint(str)
	case probe.Filtered:
		return f.colors.Filtered.Sprint(str)
	default:
		return str
	}
}

// WriteSummary writes a one-line open/closed/filtered tally.
func (f *Writer) WriteSummary() {
	header := "scan complete"
	if f.colors != nil {
		header = f.colors.Header.Sprint(header)
	}
	fmt.Fprintf(f.w, "%s: %d open, %d closed, %d filtered\n", header, f.open, f.closed, f.filtered)
}

// ColorScheme defines colors for verdict output elements.
type ColorScheme struct {
	Port     *color.Color
	Open     *color.Color
	Closed   *color.Color
	Filtered *color.Color
	Header   *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Port:     color.New(color.FgCyan, color.Bold),
		Open:     color.New(color.FgGreen, color.Bold),
		Closed:   color.New(color.FgRed),
		Filtered: color.New(color.FgYellow),
		Header:   color.New(color.FgWhite, color.Bold),
	}
}
