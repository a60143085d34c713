package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

const (
	maxMatches = 6
	maxRecent  = 5
)

// CommandMsg is emitted when the user executes a command. The text is
// lowercased with runs of whitespace collapsed.
type CommandMsg string

// Commands lists the palette commands offered as completions.
var Commands = []string{
	"inbox",
	"notes",
	"new note",
	"unread",
	"all",
	"read all",
	"category system",
	"category test_activity",
	"category account",
	"category feature_update",
	"category tip",
	"category error",
	"category all",
	"accept",
	"decline",
	"settings",
	"refresh",
	"quit",
}

// Model is the command palette. It completes known commands and keeps the
// most recent ones for display.
type Model struct {
	input  textinput.Model
	recent []string
	width  int
	height int
}

// New creates a palette sized to the terminal.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Focus()
	ti.Width = width - 6

	return Model{input: ti, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Normalize lowercases s and collapses its whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Matches returns the commands starting with prefix, in palette order.
func Matches(prefix string) []string {
	prefix = Normalize(prefix)
	if prefix == "" {
		return nil
	}
	var out []string
	for _, c := range Commands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Recent returns the executed commands, newest first.
func (m Model) Recent() []string {
	return m.recent
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		text := Normalize(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		m.remember(text)
		return m, func() tea.Msg { return CommandMsg(text) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) remember(text string) {
	recent := []string{text}
	for _, r := range m.recent {
		if r != text && len(recent) < maxRecent {
			recent = append(recent, r)
		}
	}
	m.recent = recent
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray)

	rows := []string{titleStyle.Render("Command Palette"), m.input.View()}

	if matches := Matches(m.input.Value()); len(matches) > 0 {
		if len(matches) > maxMatches {
			matches = matches[:maxMatches]
		}
		rows = append(rows, "")
		for _, c := range matches {
			rows = append(rows, dim.Render("  "+c))
		}
	} else if m.input.Value() == "" && len(m.recent) > 0 {
		rows = append(rows, "", dim.Render("recent: "+strings.Join(m.recent, ", ")))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
