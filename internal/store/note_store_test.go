package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
	"github.com/UgochukwuChidera/studio-sub001/tests/testutil"
)

func TestNotes_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	created, err := s.CreateNote(ctx, model.Note{
		UserID:  "u1",
		Title:   "Mechanics",
		Content: "Newton's laws of motion",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetNoteByID(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Newton's laws of motion", got.Content)

	got.Title = "Classical mechanics"
	require.NoError(t, s.UpdateNote(ctx, *got))

	notes, err := s.GetNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Classical mechanics", notes[0].Title)

	_, err = s.GetNoteByID(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteNote(ctx, "u1", created.ID))
	assert.ErrorIs(t, s.DeleteNote(ctx, "u1", created.ID), store.ErrNotFound)
}

func TestNotes_Validation(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.CreateNote(ctx, model.Note{UserID: "u1", Title: "  "})
	assert.Error(t, err)

	_, err = s.CreateNote(ctx, model.Note{Title: "orphan"})
	assert.Error(t, err)

	err = s.UpdateNote(ctx, model.Note{ID: "missing", UserID: "u1", Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArtifacts(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	note, err := s.CreateNote(ctx, model.Note{UserID: "u1", Title: "Cells"})
	require.NoError(t, err)

	saved, err := s.SaveArtifact(ctx, model.Artifact{
		UserID:  "u1",
		NoteID:  &note.ID,
		Kind:    model.ArtifactFlashcards,
		Title:   "Cell biology",
		Payload: `{"title":"Cell biology","flashcards":[]}`,
	})
	require.NoError(t, err)

	_, err = s.SaveArtifact(ctx, model.Artifact{
		UserID:  "u1",
		Kind:    model.ArtifactSummary,
		Title:   "Summary",
		Payload: `{"title":"Summary","notesContent":"# Cells"}`,
	})
	require.NoError(t, err)

	kind := model.ArtifactFlashcards
	cards, err := s.GetArtifacts(ctx, "u1", &kind)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, saved.ID, cards[0].ID)
	require.NotNil(t, cards[0].NoteID)
	assert.Equal(t, note.ID, *cards[0].NoteID)

	all, err := s.GetArtifacts(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteNote(ctx, "u1", note.ID))
	got, err := s.GetArtifactByID(ctx, "u1", saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NoteID)

	_, err = s.GetArtifactByID(ctx, "u1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArtifacts_Rejects(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.SaveArtifact(ctx, model.Artifact{UserID: "u1", Kind: "poem", Title: "x", Payload: "{}"})
	assert.Error(t, err)

	_, err = s.SaveArtifact(ctx, model.Artifact{UserID: "u1", Kind: model.ArtifactSummary, Title: "x", Payload: "{"})
	assert.Error(t, err)
}

func TestKeyValues(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestStore(t).KeyValues()

	_, ok, err := kv.Get(ctx, "flag")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "flag", "one"))
	require.NoError(t, kv.Set(ctx, "flag", "two"))

	v, ok, err := kv.Get(ctx, "flag")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, kv.Delete(ctx, "flag"))
	_, ok, err = kv.Get(ctx, "flag")
	require.NoError(t, err)
	assert.False(t, ok)
}
