package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/domekit/domekit/hostapi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	channelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BBBBBB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const frameInterval = time.Second / 60

type interactiveModel struct {
	session *session
	samples int
	input   textinput.Model
	status  string
	paused  bool
}

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func newInteractiveModel(samples int) (*interactiveModel, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	ti := textinput.New()
	ti.Placeholder = "tone 440 500"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{session: s, samples: samples, input: ti}, nil
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.session.shutdown()
			return m, tea.Quit

		case "enter":
			m.status = m.execute(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			if m.status == "bye" {
				m.session.shutdown()
				return m, tea.Quit
			}
		}

	case frameMsg:
		if !m.paused {
			m.session.step(m.samples)
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) execute(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "tone":
		if len(fields) != 3 {
			return "usage: tone <frequencyHz> <durationMs>"
		}
		freq, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || freq <= 0 {
			return "bad frequency"
		}
		ms, err := strconv.Atoi(fields[2])
		if err != nil || ms <= 0 {
			return "bad duration"
		}
		m.session.plugin.PlayTone(freq, ms)
		return fmt.Sprintf("playing %gHz for %dms", freq, ms)

	case "stop":
		if len(fields) != 2 {
			return "usage: stop <channel>"
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return "bad channel id"
		}
		if !m.session.plugin.stopChannel(id) {
			return fmt.Sprintf("no channel #%d", id)
		}
		return fmt.Sprintf("stopping #%d", id)

	case "pause":
		m.paused = true
		return "paused"
	case "resume":
		m.paused = false
		return "running"
	case "quit", "q":
		return "bye"
	default:
		return "commands: tone, stop, pause, resume, quit"
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DOME Synth Harness"))
	b.WriteString(fmt.Sprintf("  frame %d\n\n", m.session.plugin.frameCount()))

	lines := m.session.plugin.channels()
	if len(lines) == 0 {
		b.WriteString(helpStyle.Render("no channels — try: tone 440 500"))
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(channelStyle.Render(fmt.Sprintf("  #%d %gHz", line.ID, line.Freq)))
		b.WriteString("  ")
		b.WriteString(stateStyle.Render(line.State.String()))
		if line.State == hostapi.StatePlaying {
			b.WriteString(fmt.Sprintf("  %d frames left", line.Left))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	logs := m.session.host.Logs()
	if len(logs) > 6 {
		logs = logs[len(logs)-6:]
	}
	for _, line := range logs {
		b.WriteString(logStyle.Render("  " + strings.TrimRight(line, "\n")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		if strings.HasPrefix(m.status, "usage") || strings.HasPrefix(m.status, "bad") {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tone <hz> <ms> • stop <id> • pause/resume • ctrl+c quit"))
	b.WriteString("\n")

	return b.String()
}

func runInteractive(samples int) error {
	m, err := newInteractiveModel(samples)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
