package prompt

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// TermPrompter runs a small bubbletea program per question.
type TermPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTermPrompter builds a prompter bound to a terminal.
func NewTermPrompter(in io.Reader, out io.Writer) *TermPrompter {
	return &TermPrompter{in: in, out: out}
}

func (p *TermPrompter) Ask(label string) (string, error) {
	final, err := p.run(newLineModel(label))
	if err != nil {
		return "", err
	}
	m := final.(lineModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	fmt.Fprintln(p.out, label+m.input.Value())
	return m.input.Value(), nil
}

func (p *TermPrompter) ReadText(label string) (string, error) {
	final, err := p.run(newTextModel(label))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

func (p *TermPrompter) run(model tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(model, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: run terminal prompt: %w", err)
	}
	return final, nil
}

// lineModel collects a single line.
type lineModel struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newLineModel(label string) lineModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Width = 60
	ti.Focus()
	return lineModel{label: label, input: ti}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return labelStyle.Render(m.label) + m.input.View() + "\n"
}

// textModel collects a multi-line block; ctrl+d finishes it.
type textModel struct {
	label     string
	area      textarea.Model
	done      bool
	cancelled bool
}

func newTextModel(label string) textModel {
	ta := textarea.New()
	ta.Placeholder = "Proposal text"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.SetWidth(80)
	ta.SetHeight(12)
	ta.Focus()
	return textModel{label: label, area: ta}
}

func (m textModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlD:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return labelStyle.Render(m.label) + "\n" + m.area.View() + "\n" + hintStyle.Render("ctrl+d to finish, esc to cancel") + "\n"
}

// Value returns the text with a trailing newline, matching what a piped
// read of the same lines would produce.
func (m textModel) Value() string {
	v := m.area.Value()
	if v != "" && v[len(v)-1] != '\n' {
		v += "\n"
	}
	return v
}
