// Package tui implements the live workspace view behind `warden watch`.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wardenlabs/warden/internal/workspace"
)

// refreshInterval is how often the workspace list is re-read.
const refreshInterval = 2 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// refreshMsg carries a completed workspace scan.
type refreshMsg struct {
	entries []workspace.Entry
	err     error
}

// tickMsg schedules the next periodic refresh.
type tickMsg time.Time

// Lister supplies the current workspace entries.
type Lister interface {
	List() ([]workspace.Entry, error)
}

// Model is the bubbletea model for the watch view.
type Model struct {
	store   Lister
	spinner spinner.Model
	entries []workspace.Entry
	err     error
	width   int
	loaded  bool
}

// New creates a watch model backed by the given store.
func New(store Lister) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return Model{store: store, spinner: s}
}

// Init starts the spinner, the first scan, and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh(), tick())
}

func (m Model) refresh() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		entries, err := store.List()
		return refreshMsg{entries: entries, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case refreshMsg:
		m.entries = msg.entries
		m.err = msg.err
		m.loaded = true

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the workspace table.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("warden watch"))
	b.WriteString("  ")
	if !m.loaded {
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" loading"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d workspace(s)", len(m.entries))))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("no active workspaces"))
		b.WriteString("\n")
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %-3s %-20s %-28s %s",
			"ISSUE", "PH", "PHASE", "BRANCH", "LAST ACCESS")))
		b.WriteString("\n")
		for _, e := range m.entries {
			line := fmt.Sprintf("%-12s %-3d %-20s %-28s %s",
				e.Meta.IssueKey, e.Meta.Phase, e.Meta.PhaseName,
				truncate(e.Meta.Branch, 28), humanAge(e.Meta.LastAccessedAt))
			if e.Meta.Status == workspace.StatusActive {
				b.WriteString(activeStyle.Render(line))
			} else {
				b.WriteString(dimStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r refresh · q quit"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// humanAge renders the gap since t in the largest sensible unit.
func humanAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Run starts the watch program and blocks until the user quits.
func Run(store Lister) error {
	_, err := tea.NewProgram(New(store), tea.WithAltScreen()).Run()
	return err
}
