package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// CreateNote inserts a new note. Generates a UUID if ID is empty and
// returns the stored note.
func (s *SQLiteStore) CreateNote(ctx context.Context, note model.Note) (*model.Note, error) {
	if strings.TrimSpace(note.Title) == "" {
		return nil, fmt.Errorf("note title must not be empty")
	}
	if note.UserID == "" {
		return nil, fmt.Errorf("note user must not be empty")
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return &note, nil
}

// UpdateNote replaces the title and content of an existing note.
func (s *SQLiteStore) UpdateNote(ctx context.Context, note model.Note) error {
	if strings.TrimSpace(note.Title) == "" {
		return fmt.Errorf("note title must not be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		note.Title, note.Content, time.Now().UTC(),
		note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating note %s: %w", note.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("note %s: %w", note.ID, ErrNotFound)
	}
	return nil
}

// DeleteNote removes a note by ID. Artifacts generated from it keep their
// payload and lose the note reference.
func (s *SQLiteStore) DeleteNote(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetNoteByID retrieves a single note owned by userID.
func (s *SQLiteStore) GetNoteByID(
	ctx context.Context,
	userID, id string,
) (*model.Note, error) {
	var note model.Note
	err := s.db.QueryRowxContext(ctx, `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "note", id)
	}
	return &note, nil
}

// GetNotes lists the notes of userID, most recently updated first.
func (s *SQLiteStore) GetNotes(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes WHERE user_id = ?
		ORDER BY updated_at DESC, id ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(
			&note.ID, &note.UserID, &note.Title, &note.Content,
			&note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}
