// Package notes is the list view of the signed-in user's notes.
package notes

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
	"github.com/UgochukwuChidera/studio-sub001/internal/theme"
)

// LoadedMsg is sent when notes have been loaded.
type LoadedMsg struct {
	Notes []model.Note
	Err   error
}

// SelectedMsg is sent when a note is opened.
type SelectedMsg struct {
	Note model.Note
}

// NewMsg asks the parent to open an empty note form.
type NewMsg struct{}

// EditMsg asks the parent to open the note form for Note.
type EditMsg struct {
	Note model.Note
}

// GenerateMsg asks the parent to open the study tools for Note.
type GenerateMsg struct {
	Note model.Note
}

// ChangedMsg is sent after a note was deleted. The list reloads on
// receipt.
type ChangedMsg struct {
	Err error
}

// Item wraps a model.Note for the list.
type Item struct {
	Note model.Note
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Note.Title }

type delegate struct{}

func (delegate) Height() int                             { return 1 }
func (delegate) Spacing() int                            { return 0 }
func (delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	date := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(it.Note.UpdatedAt.Local().Format("Jan 02 15:04"))
	line := fmt.Sprintf("%s  %s", it.Note.Title, date)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// Model is the notes list view component.
type Model struct {
	list   list.Model
	store  store.NoteStore
	userID string
	keys   *keys.KeyMap
	err    error
	width  int
	height int
}

// New creates a notes view for userID.
func New(s store.NoteStore, userID string, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, delegate{}, width, height-2)
	l.Title = "Notes"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		store:  s,
		userID: userID,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the notes.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the notes view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		items := make([]list.Item, len(msg.Notes))
		for i, n := range msg.Notes {
			items[i] = Item{Note: n}
		}
		return m, m.list.SetItems(items)

	case ChangedMsg:
		m.err = msg.Err
		return m, m.Load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return SelectedMsg{Note: n} }
			}
			return m, nil

		case key.Matches(msg, m.keys.NewNote):
			return m, func() tea.Msg { return NewMsg{} }

		case key.Matches(msg, m.keys.EditNote):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditMsg{Note: n} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Generate):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return GenerateMsg{Note: n} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Remove):
			if n, ok := m.Selected(); ok {
				return m, m.remove(n.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) remove(id string) tea.Cmd {
	s, userID := m.store, m.userID
	return func() tea.Msg {
		return ChangedMsg{Err: s.DeleteNote(context.Background(), userID, id)}
	}
}

// Load returns a tea.Cmd that reads the user's notes.
func (m Model) Load() tea.Cmd {
	s, userID := m.store, m.userID
	return func() tea.Msg {
		found, err := s.GetNotes(context.Background(), userID)
		return LoadedMsg{Notes: found, Err: err}
	}
}

// Selected returns the focused note.
func (m Model) Selected() (model.Note, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Note{}, false
	}
	return it.Note, true
}

// Notes returns the notes currently listed.
func (m Model) Notes() []model.Note {
	items := m.list.Items()
	out := make([]model.Note, 0, len(items))
	for _, it := range items {
		if n, ok := it.(Item); ok {
			out = append(out, n.Note)
		}
	}
	return out
}

// Err returns the last load or delete error.
func (m Model) Err() error {
	return m.err
}

// View renders the notes list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notes yet.\n\nPress n to write one.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
