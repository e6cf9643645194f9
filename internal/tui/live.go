// Package tui provides a live terminal view of a running experiment: one row
// per presented stimulus plus a rolling population-rate chart.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	trialStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// TrialUpdate reports one finished presentation.
type TrialUpdate struct {
	Index      int
	Total      int
	StimulusID string
	MeanRate   float64 // Hz per neuron, averaged across recorded sheets
	Elapsed    time.Duration
}

// DoneMsg reports the end of the experiment run.
type DoneMsg struct {
	Total time.Duration
	Err   error
}

// Model is the bubbletea model for the live view. Updates arrive on a
// channel fed by the experiment goroutine.
type Model struct {
	name    string
	updates <-chan tea.Msg

	trials      []TrialUpdate
	rateHistory []float64
	done        bool
	total       time.Duration
	err         error
}

func NewModel(name string, updates <-chan tea.Msg) Model {
	return Model{name: name, updates: updates}
}

func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case TrialUpdate:
		m.trials = append(m.trials, msg)
		m.rateHistory = append(m.rateHistory, msg.MeanRate)
		if len(m.rateHistory) > 200 {
			m.rateHistory = m.rateHistory[1:]
		}
		return m, m.waitForUpdate()
	case DoneMsg:
		m.done = true
		m.total = msg.Total
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	if len(m.rateHistory) > 1 {
		chart := asciigraph.Plot(m.rateHistory,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("mean rate (Hz/neuron) per trial"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	start := 0
	if len(m.trials) > 10 {
		start = len(m.trials) - 10
	}
	for _, tr := range m.trials[start:] {
		line := fmt.Sprintf("%3d/%d  %-50s  %6.2f Hz  %v",
			tr.Index, tr.Total, truncate(tr.StimulusID, 50), tr.MeanRate, tr.Elapsed.Round(time.Millisecond))
		s.WriteString(trialStyle.Render(line) + "\n")
	}

	if m.done {
		if m.err != nil {
			s.WriteString("\n" + errStyle.Render("failed: "+m.err.Error()) + "\n")
		} else {
			s.WriteString("\n" + doneStyle.Render(fmt.Sprintf("done in %v", m.total.Round(time.Millisecond))) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("q: quit"))
	return s.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
