package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

func TestModel_RendersNotification(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	assert.Contains(t, m.View(), "Nothing selected")

	m.SetNotification(model.Notification{
		ID:          "n1",
		Title:       "Practice test ready",
		Description: "Newton's laws",
		Href:        "/tests/a1",
		Category:    model.CategoryTestActivity,
		Date:        time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})

	view := m.View()
	assert.Contains(t, view, "Practice test ready")
	assert.Contains(t, view, "TEST")
	assert.Contains(t, view, "/tests/a1")
	assert.Contains(t, view, "Newton's laws")
	assert.False(t, m.ShowingNote())
}

func TestModel_NonNavigableHasNoLink(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetNotification(model.Notification{Title: "Welcome", Category: model.CategorySystem})
	assert.NotContains(t, m.View(), "Link:")
	assert.Contains(t, m.View(), "No description")
}

func TestModel_NoteEditAndBack(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	note := model.Note{ID: "note-1", Title: "Optics", Content: "Snell's law"}
	m.SetNote(note)
	require.True(t, m.ShowingNote())
	assert.Contains(t, m.View(), "Snell's law")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	assert.Equal(t, EditMsg{Note: note}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestModel_EditIgnoredForNotifications(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetNotification(model.Notification{Title: "Welcome", Category: model.CategorySystem})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if cmd != nil {
		_, isEdit := cmd().(EditMsg)
		assert.False(t, isEdit)
	}
}
