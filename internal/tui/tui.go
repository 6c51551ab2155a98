// Package tui renders the run: a spinner while targets are processed,
// then a per-outcome summary.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsync/internal/app"
	"docsync/internal/report"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))            // Blue
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type runMsg struct {
	run *report.Run
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// Exec runs the pipeline and hands back its report.
type Exec func() (*report.Run, error)

// --- Model ---
type Model struct {
	exec    Exec
	spinner spinner.Model
	state   state
	run     *report.Run
	err     error
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

func New(exec Exec) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		exec:    exec,
		spinner: s,
		state:   stateProcessing,
	}
}

// Run is the finished run report, nil until the pipeline completes.
func (m Model) Run() *report.Run { return m.run }

// Err is the run-level error, nil on success.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runPipeline)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case runMsg:
		m.state = stateSummary
		m.run = msg.run
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		return fmt.Sprintf("%s Syncing documentation...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error())
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Sync complete: %d patch(es) generated", m.run.Generated)))
	b.WriteString("\n\n")

	if m.run.Message != "" {
		b.WriteString(faintStyle.Render(m.run.Message))
		b.WriteString("\n")
		return b.String()
	}

	groups := []struct {
		title   string
		style   lipgloss.Style
		outcome report.Outcome
	}{
		{"Generated:", successStyle, report.OutcomeGenerated},
		{"Already up to date:", infoStyle, report.OutcomeNoChange},
		{"Fetch failed:", errorStyle, report.OutcomeFetchFailed},
		{"No applicable patch:", errorStyle, report.OutcomeInvalid},
	}

	hasContent := false
	for _, g := range groups {
		lines := m.run.ByOutcome(g.outcome)
		if len(lines) == 0 {
			continue
		}
		hasContent = true
		b.WriteString(g.style.Render(g.title))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(line)))
		}
	}

	if !hasContent {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) runPipeline() tea.Msg {
	run, err := m.exec()
	if err != nil {
		// The TUI will exit, so stderr is fine for the stack trace.
		if e, ok := err.(*app.DetailedError); ok {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return runMsg{run: run}
}
