package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

const timeLayout = "2006-01-02 15:04"

// BackMsg signals the parent to navigate back to the previous list.
type BackMsg struct{}

// EditMsg asks the parent to open the note being shown in the editor.
type EditMsg struct {
	Note model.Note
}

// Model shows one notification or one note.
type Model struct {
	notification *model.Notification
	note         *model.Note
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.EditNote):
			if m.note != nil {
				note := *m.note
				return m, func() tea.Msg { return EditMsg{Note: note} }
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.notification == nil && m.note == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Nothing selected")
	}
	return m.viewport.View()
}

// SetNotification shows n.
func (m *Model) SetNotification(n model.Notification) {
	m.notification = &n
	m.note = nil
	m.refresh()
}

// SetNote shows n.
func (m *Model) SetNote(n model.Note) {
	m.note = &n
	m.notification = nil
	m.refresh()
}

// ShowingNote reports whether a note is displayed.
func (m Model) ShowingNote() bool {
	return m.note != nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	switch {
	case m.notification != nil:
		return m.renderNotification(*m.notification)
	case m.note != nil:
		return m.renderNote(*m.note)
	default:
		return ""
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle  = lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle   = lipgloss.NewStyle().Foreground(theme.ColorWhite)
)

func (m Model) separator() string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
}

func (m Model) renderNotification(n model.Notification) string {
	var sections []string
	sections = append(sections, titleStyle.Render(n.Title))

	state := theme.UnreadStyle.Render("unread")
	if n.Read {
		state = theme.ReadStyle.Render("read")
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		theme.CategoryStyle(n.Category).Render(theme.CategoryLabel(n.Category)),
		"  ", state,
	))
	sections = append(sections, "")

	sections = append(sections, fmt.Sprintf("%s  %s",
		metaStyle.Render("Date:"), valStyle.Render(n.Date.Local().Format(timeLayout))))
	if n.Navigable() {
		sections = append(sections, fmt.Sprintf("%s  %s",
			metaStyle.Render("Link:"), valStyle.Render(n.Href)))
	}

	body := n.Description
	if body == "" {
		body = metaStyle.Italic(true).Render("No description")
	}
	sections = append(sections, "", m.separator(), "", body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderNote(n model.Note) string {
	var sections []string
	sections = append(sections, titleStyle.Render(n.Title), "")
	sections = append(sections, fmt.Sprintf("%s   %s",
		metaStyle.Render("Created:"), valStyle.Render(n.CreatedAt.Local().Format(timeLayout))))
	sections = append(sections, fmt.Sprintf("%s   %s",
		metaStyle.Render("Updated:"), valStyle.Render(n.UpdatedAt.Local().Format(timeLayout))))

	body := n.Content
	if strings.TrimSpace(body) == "" {
		body = metaStyle.Italic(true).Render("Empty note")
	}
	sections = append(sections, "", m.separator(), "", body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
