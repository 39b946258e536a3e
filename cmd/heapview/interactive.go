package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxHistory caps the command/result pairs kept on screen.
const maxHistory = 20

type entry struct {
	err    error
	cmd    string
	output string
}

type interactiveModel struct {
	sess    *session
	name    string
	history []entry
	input   textinput.Model
	past    []string
	recall  int
	width   int
}

func newInteractiveModel(sess *session, name string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("heap> ")
	ti.Placeholder = "help"
	ti.Focus()

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	ti.Width = width - 8

	if name == "" {
		name = "bump heap"
	}
	return &interactiveModel{
		sess:  sess,
		name:  name,
		input: ti,
		width: width,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 8

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.past[m.recall])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall < len(m.past)-1 {
				m.recall++
				m.input.SetValue(m.past[m.recall])
			} else {
				m.recall = len(m.past)
				m.input.SetValue("")
			}
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.run(line)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) run(line string) {
	out, err := m.sess.exec(line)
	m.history = append(m.history, entry{cmd: line, output: out, err: err})
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.past = append(m.past, line)
	m.recall = len(m.past)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Heap"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(m.width)
	for _, e := range m.history {
		b.WriteString(promptStyle.Render("heap> "))
		b.WriteString(e.cmd)
		b.WriteString("\n")
		switch {
		case e.err != nil:
			b.WriteString(wrap.Inherit(errorStyle).Render("Error: " + e.err.Error()))
			b.WriteString("\n")
		case e.output != "":
			b.WriteString(wrap.Inherit(resultStyle).Render(e.output))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • esc quit"))
	return b.String()
}

func runInteractive(sess *session, name string) error {
	p := tea.NewProgram(newInteractiveModel(sess, name), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
