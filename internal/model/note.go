package model

import "time"

// Note is a user's study note. Generated flows read their text content
// from notes.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArtifactKind identifies which generative flow produced an artifact.
type ArtifactKind string

const (
	ArtifactPracticeTest ArtifactKind = "practice_test"
	ArtifactFlashcards   ArtifactKind = "flashcards"
	ArtifactSummary      ArtifactKind = "summary"
)

// Artifact is a persisted flow result. Payload holds the flow output
// encoded as JSON.
type Artifact struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	NoteID    *string      `json:"note_id,omitempty"`
	Kind      ArtifactKind `json:"kind"`
	Title     string       `json:"title"`
	Payload   string       `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}
