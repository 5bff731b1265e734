package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/egoavara/bitrix-console/internal/marketplace"
)

// ErrPromptCancelled is returned when the user aborts the prompt
var ErrPromptCancelled = errors.New("prompt cancelled")

// QueryModel is the bubbletea model asking for a catalog query
type QueryModel struct {
	input     textinput.Model
	errMsg    string
	attempt   int
	value     string
	quitting  bool
	confirmed bool
}

// NewQueryModel creates the prompt model. errMsg is shown when a previous
// answer was rejected.
func NewQueryModel(defaultQuery, errMsg string, attempt int) QueryModel {
	ti := textinput.New()
	ti.Placeholder = defaultQuery
	ti.Prompt = "› "
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()

	return QueryModel{
		input:   ti,
		errMsg:  errMsg,
		attempt: attempt,
	}
}

func (m QueryModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m QueryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			m.value = m.input.Value()
			if m.value == "" {
				m.value = m.input.Placeholder
			}
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m QueryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("prompt.query", nil)))
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		if m.attempt > 1 {
			b.WriteString(counterStyle.Render(fmt.Sprintf(" (%d/%d)", m.attempt, marketplace.MaxQueryAttempts)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: " + i18n.T("prompt.help.confirm", nil) + " | Esc: " + i18n.T("prompt.help.cancel", nil)))
	b.WriteString("\n")
	return b.String()
}

// Value returns the submitted answer
func (m QueryModel) Value() string {
	return m.value
}

// IsConfirmed returns whether the user submitted an answer
func (m QueryModel) IsConfirmed() bool {
	return m.confirmed
}

// Asker returns one raw answer, with the error left by the previous attempt
type Asker func(errMsg string, attempt int) (string, error)

// AskQuery asks up to MaxQueryAttempts times until ValidateQuery accepts
// the answer. Blank answers fall back to defaultQuery.
func AskQuery(ask Asker, defaultQuery string) (string, error) {
	var lastErr error
	errMsg := ""

	for attempt := 1; attempt <= marketplace.MaxQueryAttempts; attempt++ {
		answer, err := ask(errMsg, attempt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(answer) == "" {
			answer = defaultQuery
		}

		query, err := marketplace.ValidateQuery(answer)
		if err == nil {
			return query, nil
		}
		lastErr = err
		errMsg = i18n.T("prompt.invalid", nil)
	}
	return "", lastErr
}

// TerminalAsker prompts with an interactive text input
func TerminalAsker(in io.Reader, out io.Writer, defaultQuery string) Asker {
	return func(errMsg string, attempt int) (string, error) {
		p := tea.NewProgram(NewQueryModel(defaultQuery, errMsg, attempt), tea.WithInput(in), tea.WithOutput(out))
		final, err := p.Run()
		if err != nil {
			return "", err
		}
		m := final.(QueryModel)
		if !m.IsConfirmed() {
			return "", ErrPromptCancelled
		}
		return m.Value(), nil
	}
}

// LineAsker prompts with plain lines, for input that is not a terminal
func LineAsker(in io.Reader, out io.Writer, defaultQuery string) Asker {
	reader := bufio.NewReader(in)
	return func(errMsg string, _ int) (string, error) {
		if errMsg != "" {
			fmt.Fprintln(out, errMsg)
		}
		fmt.Fprintf(out, "%s [%s] ", i18n.T("prompt.query", nil), defaultQuery)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
