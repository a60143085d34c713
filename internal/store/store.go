package store

import (
	"context"
	"errors"
	"time"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

var (
	// ErrNotFound is returned when a record with the requested id does not
	// exist for the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when inserting a record whose id is
	// already taken.
	ErrDuplicateID = errors.New("duplicate id")
)

// NotificationFilter controls filtering and pagination for notification
// queries. Results are always ordered newest first, ties in insertion order.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Category   *model.NotificationCategory
	Limit      int
	Offset     int
}

// NotificationStore persists notifications per user.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	GetNotificationByID(ctx context.Context, userID, id string) (*model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, userID, id string) error
	DeleteNotificationsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
	TrimNotifications(ctx context.Context, userID string, keep int) (int64, error)
}

// NoteStore persists study notes per user.
type NoteStore interface {
	CreateNote(ctx context.Context, note model.Note) (*model.Note, error)
	UpdateNote(ctx context.Context, note model.Note) error
	DeleteNote(ctx context.Context, userID, id string) error
	GetNoteByID(ctx context.Context, userID, id string) (*model.Note, error)
	GetNotes(ctx context.Context, userID string) ([]model.Note, error)
}

// ArtifactStore persists generated flow results per user.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error)
	GetArtifactByID(ctx context.Context, userID, id string) (*model.Artifact, error)
	GetArtifacts(ctx context.Context, userID string, kind *model.ArtifactKind) ([]model.Artifact, error)
}

// Store defines the persistence interface for notifications, notes and
// generated artifacts.
type Store interface {
	NotificationStore
	NoteStore
	ArtifactStore
}
