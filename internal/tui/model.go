package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for the TUI
type (
	StepMsg struct {
		Label string
	}
	VerifyProgressMsg struct {
		Current int
		Total   int
	}
	DoneMsg struct {
		Err error
	}
)

// Model renders the progress of a single composite update.
type Model struct {
	location    string
	spinner     spinner.Model
	progress    progress.Model
	done        []string
	current     string
	verifyDone  int
	verifyTotal int
	Finished    bool
	Err         error
}

func NewModel(location string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return Model{location: location, spinner: s, progress: p}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case StepMsg:
		if m.current != "" {
			m.done = append(m.done, m.current)
		}
		m.current = msg.Label
		return m, nil

	case VerifyProgressMsg:
		m.verifyDone = msg.Current
		m.verifyTotal = msg.Total
		return m, nil

	case DoneMsg:
		if m.current != "" && msg.Err == nil {
			m.done = append(m.done, m.current)
			m.current = ""
		}
		m.Finished = true
		m.Err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Composite repository"))
	b.WriteString(" ")
	b.WriteString(locationStyle.Render(m.location))
	b.WriteString("\n")

	for _, step := range m.done {
		b.WriteString(fmt.Sprintf("%s %s\n", successStyle.Render(iconSuccess), stepStyle.Render(step)))
	}

	switch {
	case m.Err != nil:
		b.WriteString(fmt.Sprintf("%s %s\n", errorStyle.Render(iconError), stepStyle.Render(m.current)))
	case m.current != "":
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.current))
		if m.verifyTotal > 0 {
			percent := float64(m.verifyDone) / float64(m.verifyTotal)
			b.WriteString(fmt.Sprintf("  %s %d/%d\n", m.progress.ViewAs(percent), m.verifyDone, m.verifyTotal))
		}
	}
	return b.String()
}
