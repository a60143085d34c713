package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/command"
)

// Model is the help overlay: key bindings, the category legend and the
// palette commands.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	section := titleStyle.MarginTop(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, helpText,
		section.Render("Categories"), legend(),
		section.Render("Commands (:)"), commands(m.width-8),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

// legend lists every notification category with its badge, then the
// unread marker.
func legend() string {
	lines := make([]string, 0, len(model.NotificationCategories)+1)
	for _, c := range model.NotificationCategories {
		badge := theme.CategoryStyle(c).Render(fmt.Sprintf("%-4s", theme.CategoryLabel(c)))
		lines = append(lines, badge+" "+strings.ReplaceAll(string(c), "_", " "))
	}
	lines = append(lines, "●    unread")
	return strings.Join(lines, "\n")
}

// commands wraps the palette commands to width.
func commands(width int) string {
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().
		Width(width).
		Foreground(theme.ColorGray).
		Render(strings.Join(command.Commands, " · "))
}
