package notes

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/tests/testutil"
)

func drain(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	var msgs []tea.Msg
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 10, "command chain did not settle")
		msg := cmd()
		msgs = append(msgs, msg)
		m, cmd = m.Update(msg)
	}
	return m, msgs
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_ListSelectAndDelete(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	note, err := s.CreateNote(ctx, model.Note{UserID: "user-1", Title: "Optics", Content: "light"})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, model.Note{UserID: "user-2", Title: "Not mine"})
	require.NoError(t, err)

	m := New(s, "user-1", keys.DefaultKeyMap(), 80, 24)
	m, _ = drain(t, m, m.Init())
	require.Len(t, m.Notes(), 1)
	assert.Contains(t, m.View(), "Optics")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedMsg{Note: m.Notes()[0]}, cmd())

	_, cmd = m.Update(runeKey('e'))
	require.NotNil(t, cmd)
	assert.IsType(t, EditMsg{}, cmd())

	_, cmd = m.Update(runeKey('n'))
	require.NotNil(t, cmd)
	assert.Equal(t, NewMsg{}, cmd())

	_, cmd = m.Update(runeKey('d'))
	m, msgs := drain(t, m, cmd)
	assert.Equal(t, ChangedMsg{}, msgs[0])
	assert.Empty(t, m.Notes())
	assert.Contains(t, m.View(), "No notes yet")

	_, err = s.GetNoteByID(ctx, "user-1", note.ID)
	assert.Error(t, err)
}
