package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
	"github.com/UgochukwuChidera/studio-sub001/tests/testutil"
)

type cannedGenerator struct {
	out   string
	err   error
	calls int
}

func (g *cannedGenerator) Generate(_ context.Context, _ flow.Request) (string, error) {
	g.calls++
	return g.out, g.err
}

func setup(t *testing.T, gen flow.Generator, readiness flow.Readiness) (Model, model.Note) {
	t.Helper()
	s := testutil.NewTestStore(t)
	runner := flow.NewRunner(gen, readiness, nil)
	svc := study.New(s, runner, notify.NewCenter(s).Inbox("user-1"), nil)

	note, err := s.CreateNote(context.Background(), model.Note{UserID: "user-1", Title: "Optics", Content: "Light refracts."})
	require.NoError(t, err)

	m := New(svc, keys.DefaultKeyMap(), 100, 30)
	m.SetNote(*note)
	return m, *note
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press sends key r and feeds the generation result back.
func press(t *testing.T, m Model, r rune) Model {
	t.Helper()
	m, cmd := m.Update(runeKey(r))
	require.True(t, m.Running())
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	require.False(t, m.Running())
	return m
}

func TestPanel_Flashcards(t *testing.T) {
	gen := &cannedGenerator{out: `{"title": "Refraction", "flashcards": [{"front": "Snell's law", "back": "n1 sin a = n2 sin b"}]}`}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	assert.Contains(t, m.View(), "Study tools · Optics")

	m = press(t, m, 'f')
	res, ok := m.Result()
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, model.ArtifactFlashcards, res.Kind)
	assert.NotEmpty(t, res.ArtifactID)
	assert.Contains(t, m.View(), "Snell's law")
	assert.Contains(t, m.View(), "Saved as")
	assert.Equal(t, 1, gen.calls)
}

func TestPanel_OpenQuestionTest(t *testing.T) {
	var qs []string
	for i := 0; i < defaultQuestions; i++ {
		qs = append(qs, fmt.Sprintf(`{"type": "descriptive", "questionText": "Question %d"}`, i+1))
	}
	gen := &cannedGenerator{out: `{"testTitle": "Light", "questions": [` + strings.Join(qs, ",") + `]}`}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	m = press(t, m, 'o')
	res, ok := m.Result()
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, model.ArtifactPracticeTest, res.Kind)
	assert.Contains(t, res.Body, "5. Question 5")
	assert.Contains(t, res.Body, "answer in your own words")
}

func TestPanel_Summary(t *testing.T) {
	gen := &cannedGenerator{out: `{"title": "Optics", "notesContent": "- light bends"}`}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	m = press(t, m, 's')
	res, _ := m.Result()
	require.NoError(t, res.Err)
	assert.Contains(t, res.Body, "light bends")
	assert.Equal(t, "# Optics\n\n- light bends", res.Text)
}

func TestPanel_CopyResult(t *testing.T) {
	var copied string
	orig := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = orig })

	gen := &cannedGenerator{out: `{"title": "Optics", "notesContent": "- light bends"}`}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	m, cmd := m.Update(runeKey('c'))
	assert.Nil(t, cmd)
	assert.Empty(t, copied, "nothing to copy before a result")

	m = press(t, m, 's')
	m, _ = m.Update(runeKey('c'))
	assert.Equal(t, "# Optics\n\n- light bends", copied)
	assert.Contains(t, m.View(), "Copied to clipboard")

	clipboardWriteAll = func(string) error { return errors.New("no clipboard") }
	m, _ = m.Update(runeKey('c'))
	assert.Contains(t, m.View(), "Copy failed: no clipboard")
}

func TestPanel_FailureShown(t *testing.T) {
	gen := &cannedGenerator{err: errors.New("model overloaded")}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	m = press(t, m, 's')
	res, _ := m.Result()
	require.Error(t, res.Err)
	assert.True(t, flow.IsExecution(res.Err))
	assert.Contains(t, m.View(), "Nothing was saved")
}

func TestPanel_IgnoresKeysWhileRunning(t *testing.T) {
	gen := &cannedGenerator{out: `{"title": "Optics", "notesContent": "- light bends"}`}
	m, _ := setup(t, gen, flow.Readiness{Status: flow.Ready})

	m, cmd := m.Update(runeKey('s'))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Generating summary")

	m, again := m.Update(runeKey('f'))
	assert.Nil(t, again)

	_, esc := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, esc, "esc is ignored while generating")
}

func TestPanel_NotConfigured(t *testing.T) {
	m, _ := setup(t, nil, flow.Readiness{Status: flow.MisconfiguredMissingCredential, Detail: "no key"})

	assert.False(t, m.Ready())
	assert.Contains(t, m.View(), "Gemini API key")
	assert.Contains(t, m.View(), "no key")

	m, cmd := m.Update(runeKey('s'))
	assert.False(t, m.Running())
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CloseMsg{}, cmd())
}
