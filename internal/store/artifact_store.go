package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// SaveArtifact stores a generated flow result. Payload must be valid JSON.
func (s *SQLiteStore) SaveArtifact(
	ctx context.Context,
	a model.Artifact,
) (*model.Artifact, error) {
	switch a.Kind {
	case model.ArtifactPracticeTest, model.ArtifactFlashcards, model.ArtifactSummary:
	default:
		return nil, fmt.Errorf("saving artifact: unknown kind %q", a.Kind)
	}
	if !json.Valid([]byte(a.Payload)) {
		return nil, fmt.Errorf("saving artifact: payload is not valid JSON")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, user_id, note_id, kind, title, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.NoteID, string(a.Kind), a.Title, a.Payload, a.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("saving artifact: %w", err)
	}
	return &a, nil
}

// GetArtifactByID retrieves a single artifact owned by userID.
func (s *SQLiteStore) GetArtifactByID(
	ctx context.Context,
	userID, id string,
) (*model.Artifact, error) {
	var (
		a    model.Artifact
		kind string
	)
	err := s.db.QueryRowxContext(ctx, `
		SELECT id, user_id, note_id, kind, title, payload, created_at
		FROM artifacts WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&a.ID, &a.UserID, &a.NoteID, &kind, &a.Title, &a.Payload, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "artifact", id)
	}
	a.Kind = model.ArtifactKind(kind)
	return &a, nil
}

// GetArtifacts lists the artifacts of userID, newest first, optionally
// restricted to one kind.
func (s *SQLiteStore) GetArtifacts(
	ctx context.Context,
	userID string,
	kind *model.ArtifactKind,
) ([]model.Artifact, error) {
	query := `
		SELECT id, user_id, note_id, kind, title, payload, created_at
		FROM artifacts WHERE user_id = ?`
	args := []interface{}{userID}
	if kind != nil {
		query += " AND kind = ?"
		args = append(args, string(*kind))
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []model.Artifact{}
	for rows.Next() {
		var (
			a model.Artifact
			k string
		)
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.NoteID, &k, &a.Title, &a.Payload, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		a.Kind = model.ArtifactKind(k)
		artifacts = append(artifacts, a)
	}

	return artifacts, rows.Err()
}
