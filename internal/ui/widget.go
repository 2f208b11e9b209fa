// Package ui renders the live timer widget: a project list with running
// elapsed times, driven by tick messages for second-level polling, day
// rollover and the crash-safety backstop save.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marender/immertrack/internal/engine"
	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/rollover"
	"github.com/marender/immertrack/internal/timeutil"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C")).
			MarginTop(1)
)

type pollMsg time.Time
type rolloverMsg time.Time
type backstopMsg time.Time

// StateSaver persists the live engine state after each mutation.
type StateSaver interface {
	Save(st model.EngineState) error
}

// Model is the bubbletea model for the widget.
type Model struct {
	eng      *engine.Engine
	coord    *rollover.Coordinator
	states   StateSaver
	projects []model.Project

	rolloverEvery time.Duration
	backstopEvery time.Duration

	cursor  int
	width   int
	lastErr string
}

// New assembles the widget around an engine and its coordinator.
// projects is the selectable (non-archived) project list.
func New(eng *engine.Engine, coord *rollover.Coordinator, states StateSaver, projects []model.Project, rolloverEvery, backstopEvery time.Duration) Model {
	return Model{
		eng:           eng,
		coord:         coord,
		states:        states,
		projects:      projects,
		rolloverEvery: rolloverEvery,
		backstopEvery: backstopEvery,
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func rolloverTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return rolloverMsg(t) })
}

func backstopTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return backstopMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollTick(), rolloverTick(m.rolloverEvery), backstopTick(m.backstopEvery))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.flush()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.projects)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.toggle()
		case "s":
			m.eng.Stop()
			m.saveState()
		}

	case pollMsg:
		// The cap tick runs at polling cadence while a session is open.
		wasActive := false
		if _, running := m.eng.Active(); running {
			wasActive = true
		}
		m.eng.Tick()
		if wasActive {
			if _, running := m.eng.Active(); !running {
				// Auto-stopped at the cap; persist the clamped session.
				m.saveState()
			}
		}
		return m, pollTick()

	case rolloverMsg:
		m.coord.CheckRollover()
		return m, rolloverTick(m.rolloverEvery)

	case backstopMsg:
		if err := m.coord.BackstopSave(); err != nil {
			m.lastErr = fmt.Sprintf("save failed: %v", err)
		} else {
			m.lastErr = ""
		}
		return m, backstopTick(m.backstopEvery)
	}

	return m, nil
}

// toggle starts the selected project, or stops it when already running.
func (m *Model) toggle() {
	if m.cursor >= len(m.projects) {
		return
	}
	p := m.projects[m.cursor]
	if activeID, running := m.eng.Active(); running && activeID == p.ID {
		m.eng.Stop()
	} else {
		m.eng.Start(p.ID)
	}
	m.saveState()
}

func (m *Model) saveState() {
	if err := m.states.Save(m.eng.State()); err != nil {
		m.lastErr = fmt.Sprintf("save failed: %v", err)
	}
}

// flush persists everything on the way out.
func (m *Model) flush() {
	m.eng.Stop()
	m.saveState()
	if err := m.coord.BackstopSave(); err != nil {
		m.lastErr = fmt.Sprintf("save failed: %v", err)
	}
}

func (m Model) View() string {
	var b strings.Builder

	date := m.eng.CurrentDate()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Immersive Time Track – %s", date)))
	b.WriteString("\n\n")

	activeID, running := m.eng.Active()
	for i, p := range m.projects {
		elapsed := timeutil.FormatHMS(m.eng.ElapsedFor(p.ID))
		line := fmt.Sprintf("%-20s %s", p.Name, elapsed)

		switch {
		case running && p.ID == activeID:
			line = activeStyle.Render("▶ " + line)
		case i == m.cursor:
			line = selectedStyle.Render("› " + line)
		default:
			line = dimStyle.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Today: %s", timeutil.FormatDuration(m.eng.TodayTotal())))
	if m.eng.LimitReached() {
		b.WriteString("  " + warnStyle.Render("daily limit reached"))
	}
	if m.lastErr != "" {
		b.WriteString("\n" + warnStyle.Render(m.lastErr))
	}

	b.WriteString(helpStyle.Render("\n↑/↓ select · enter start/stop · s stop · q quit"))
	return b.String()
}
