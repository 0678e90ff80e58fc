package main

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errPromptCancelled = errors.New("no phrase entered")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// promptModel asks for the phrase to call out.
type promptModel struct {
	input     textinput.Model
	preview   string
	value     string
	cancelled bool
}

func newPromptModel(preview string) promptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Phrase to call out"
	ti.Focus()
	ti.CharLimit = 0
	return promptModel{input: ti, preview: preview}
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.value = q
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Callout phrase"))
	b.WriteString("\n")
	if m.preview != "" {
		b.WriteString(hintStyle.Render(m.preview))
		b.WriteString("\n")
	}
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to confirm, esc to cancel"))
	return b.String()
}

// promptPhrase runs the interactive prompt. preview is a short excerpt of
// the page text shown above the input.
func promptPhrase(preview string) (string, error) {
	final, err := tea.NewProgram(newPromptModel(preview)).Run()
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.cancelled || m.value == "" {
		return "", errPromptCancelled
	}
	return m.value, nil
}

// previewWords returns the first n words of the page, for the prompt.
func previewWords(words []string, n int) string {
	if len(words) > n {
		return strings.Join(words[:n], " ") + " ..."
	}
	return strings.Join(words, " ")
}
