package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePromptFilename(t *testing.T) {
	tests := []struct {
		name string
		want PromptRef
		ok   bool
	}{
		{"generateNotes.v1.tmpl", PromptRef{Name: "generateNotes", Version: 1}, true},
		{"a.b.v12.tmpl", PromptRef{Name: "a.b", Version: 12}, true},
		{"generateNotes.tmpl", PromptRef{}, false},
		{"generateNotes.v0.tmpl", PromptRef{}, false},
		{"generateNotes.vx.tmpl", PromptRef{}, false},
		{".v1.tmpl", PromptRef{}, false},
		{"README.md", PromptRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePromptFilename(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.name, got.filename())
			}
		})
	}
}

func TestEmbeddedPromptsRender(t *testing.T) {
	ps, err := LoadPrompts("")
	require.NoError(t, err)

	cases := []struct {
		ref  PromptRef
		vars map[string]any
	}{
		{PromptExtractText, ExtractTextFlow.varsFor(OCRInput{})},
		{PromptPracticeTest, PracticeTestFlow.varsFor(PracticeTestInput{TextContent: "t", QuestionType: Descriptive, NumberOfQuestions: 2})},
		{PromptFlashcards, FlashcardsFlow.varsFor(FlashcardsInput{TextContent: "t"})},
		{PromptNotes, NotesFlow.varsFor(NotesInput{TextContent: "t", NoteLength: NoteLong})},
	}
	for _, c := range cases {
		t.Run(c.ref.String(), func(t *testing.T) {
			require.True(t, ps.Has(c.ref))
			text, err := ps.Render(c.ref, c.vars)
			require.NoError(t, err)
			assert.NotEmpty(t, text)
			assert.NotContains(t, text, "<no value>")
		})
	}
}

func TestPromptRenderErrors(t *testing.T) {
	ps, err := LoadPrompts("")
	require.NoError(t, err)

	_, err = ps.Render(PromptRef{Name: "missing", Version: 1}, nil)
	assert.Error(t, err)

	// Templates reject missing variables instead of printing <no value>.
	_, err = ps.Render(PromptNotes, map[string]any{"noteLength": "short"})
	assert.Error(t, err)

	assert.Error(t, ps.Add(PromptRef{Name: "broken", Version: 1}, "{{if}}"))
}

func TestLoadPromptsOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generateNotes.v1.tmpl"),
		[]byte("Summarize in {{.noteLength}} form:\n{{.textContent}}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generateNotes.v2.tmpl"),
		[]byte("v2 {{.textContent}}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	ps, err := LoadPrompts(dir)
	require.NoError(t, err)

	text, err := ps.Render(PromptNotes, map[string]any{"noteLength": "short", "textContent": "cells"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize in short form:\ncells", text)

	assert.True(t, ps.Has(PromptRef{Name: "generateNotes", Version: 2}))
	assert.True(t, ps.Has(PromptFlashcards), "embedded prompts stay available")

	_, err = LoadPrompts(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}

func TestParseDataURI(t *testing.T) {
	m, err := ParseDataURI("data:image/JPEG;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", m.MIMEType)
	assert.Equal(t, []byte("hello"), m.Data)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", m.DataURI())

	m, err = ParseDataURI("data:image/png;name=scan.png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.MIMEType)

	for _, bad := range []string{
		"image/png;base64,aGk=",
		"data:image/png;base64",
		"data:;base64,aGk=",
		"data:image/png,hi",
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	} {
		_, err := ParseDataURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestQuestionSchemaMatchesType(t *testing.T) {
	mcq := practiceTestSchema(PracticeTestInput{QuestionType: MultipleChoice, NumberOfQuestions: 4})
	items := mcq.Properties["questions"].Items
	assert.Contains(t, items.Properties, "correctOptionIndex")
	assert.Equal(t, []string{"multipleChoice"}, items.Properties["type"].Enum)
	assert.Equal(t, int64(4), *mcq.Properties["questions"].MinItems)

	desc := practiceTestSchema(PracticeTestInput{QuestionType: Descriptive, NumberOfQuestions: 1})
	items = desc.Properties["questions"].Items
	assert.NotContains(t, items.Properties, "options")
	assert.NotContains(t, items.Properties, "correctOptionIndex")
	assert.Equal(t, bloomStrings(), items.Properties["bloomLevel"].Enum)
}
