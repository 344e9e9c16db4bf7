// Package tui provides an interactive terminal UI for a running scan.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KilimcininKorOglu/sondaj/internal/probe"
	"github.com/KilimcininKorOglu/sondaj/internal/scan"
)

// State represents the current state of the TUI.
type State int

const (
	StateRunning State = iota
	StateComplete
	StateError
)

// PortResult is one completed port verdict, in the order it was received.
type PortResult struct {
	Port    int
	Proto   string
	Verdict probe.Verdict
}

// Model is the Bubble Tea model for the scan TUI.
type Model struct {
	// Configuration
	target     string
	engines    []*scan.Engine
	portLists  [][]int // portLists[i] is the port list owned by engines[i]
	totalPorts int
	width      int
	height     int

	// State
	state     State
	results   []PortResult
	err       error
	elapsed   time.Duration
	startTime time.Time

	// UI components
	spinner spinner.Model

	// Styles
	styles Styles

	// Channel for result updates
	resultChan chan PortResult
}

// ResultMsg is sent when a new port verdict is produced.
type ResultMsg struct {
	Result PortResult
}

// CompleteMsg is sent when all engines have finished scanning.
type CompleteMsg struct{}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Err error
}

// TickMsg is sent to update elapsed time.
type TickMsg time.Time

// New creates a new TUI model scanning ports across engines. portLists
// must be parallel to engines: portLists[i] is scanned by engines[i]
// alone, never shared across engines.
func New(target string, engines []*scan.Engine, portLists [][]int) (*Model, error) {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	total := 0
	for _, ports := range portLists {
		total += len(ports)
	}

	m := &Model{
		target:     target,
		engines:    engines,
		portLists:  portLists,
		totalPorts: total,
		state:      StateRunning,
		results:    make([]PortResult, 0, total),
		spinner:    s,
		styles:     DefaultStyles(),
		width:      80,
		height:     24,
		startTime:  time.Now(),
		resultChan: make(chan PortResult, 256),
	}

	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.runScan(),
		m.tickCmd(),
		m.waitForResult(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		m.elapsed = time.Since(m.startTime)
		if m.state == StateRunning {
			return m, m.tickCmd()
		}

	case ResultMsg:
		m.results = append(m.results, msg.Result)
		return m, m.waitForResult()

	case CompleteMsg:
		m.state = StateComplete

	case ErrorMsg:
		m.state = StateError
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("sondaj")

	var status string
	switch m.state {
	case StateRunning:
		status = m.spinner.View() + " Scanning..."
	case StateComplete:
		status = m.styles.Success.Render("✓ Complete")
	case StateError:
		status = m.styles.Error.Render("✗ Error")
	}

	info := fmt.Sprintf("Target: %s | Ports: %d", m.target, m.totalPorts)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.styles.Subtle.Render(info),
		status,
	)
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return m.styles.Subtle.Render("Waiting for responses...")
	}

	var rows []string

	header := fmt.Sprintf("%-8s %-10s", "PORT", "STATE")
	rows = append(rows, m.styles.Header.Render(header))
	rows = append(rows, m.styles.Subtle.Render(strings.Repeat("─", 40)))

	for _, r := range m.results {
		rows = append(rows, m.renderResultRow(r))
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderResultRow(r PortResult) string {
	portCol := fmt.Sprintf("%-8s", fmt.Sprintf("%d/%s", r.Port, r.Proto))
	return fmt.Sprintf("%-8s %s",
		m.styles.HopNum.Render(portCol),
		m.colorizeVerdict(r.Verdict),
	)
}

func (m Model) colorizeVerdict(v probe.Verdict) string {
	str := v.String()
	switch v {
	case probe.Open:
		return m.styles.RTTLow.Render(str)
	case probe.Closed:
		return m.styles.Timeout.Render(str)
	default:
		return m.styles.RTTMed.Render(str)
	}
}

func (m Model) renderFooter() string {
	var parts []string

	if m.state == StateComplete {
		parts = append(parts, fmt.Sprintf("Ports scanned: %d", len(m.results)))
	}
	parts = append(parts, "Press 'q' to quit")

	return m.styles.Subtle.Render(strings.Join(parts, " | "))
}

// runScan runs every engine's scan over its own port list in the
// background, streaming completed verdicts to resultChan as they arrive.
func (m Model) runScan() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		for i, eng := range m.engines {
			err := eng.ScanPorts(ctx, m.portLists[i], func(port int, proto string, verdict probe.Verdict) {
				m.resultChan <- PortResult{Port: port, Proto: proto, Verdict: verdict}
			})
			if err != nil {
				return ErrorMsg{Err: err}
			}
		}
		return CompleteMsg{}
	}
}

// waitForResult waits for a verdict from resultChan.
func (m Model) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-m.resultChan
		if !ok {
			return nil
		}
		return ResultMsg{Result: result}
	}
}

// tickCmd returns a command that sends tick messages.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Close releases resources.
func (m *Model) Close() error {
	if m.resultChan != nil {
		close(m.resultChan)
	}
	return nil
}
