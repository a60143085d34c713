package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:"
	// databases from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var v int
	if err := s.db.Get(&v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const notificationColumns = `id, user_id, title, description, href, read, category, icon, created_at`

// CreateNotification inserts a new notification record. Generates a UUID
// if ID is empty and returns ErrDuplicateID when the id is taken.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if !n.Category.Valid() {
		return fmt.Errorf("creating notification %s: invalid category %q", n.ID, n.Category)
	}
	if n.Date.IsZero() {
		n.Date = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.GetContext(ctx, &existing,
		"SELECT COUNT(*) FROM notifications WHERE id = ?", n.ID); err != nil {
		return fmt.Errorf("checking notification %s: %w", n.ID, err)
	}
	if existing > 0 {
		return fmt.Errorf("creating notification %s: %w", n.ID, ErrDuplicateID)
	}

	// seq records insertion order so equal dates keep a stable order.
	var maxSeq int64
	if err := tx.GetContext(ctx, &maxSeq,
		"SELECT COALESCE(MAX(seq), 0) FROM notifications"); err != nil {
		return fmt.Errorf("getting max seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (
			id, user_id, seq, title, description, href,
			read, category, icon, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, maxSeq+1, n.Title, n.Description, n.Href,
		boolToInt(n.Read), string(n.Category), n.Icon, n.Date.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return tx.Commit()
}

// GetNotifications retrieves the notifications matching filter, ordered
// by creation time descending with ties in insertion order.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
	filter NotificationFilter,
) ([]model.Notification, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.UnreadOnly {
		conditions = append(conditions, "read = 0")
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, string(*filter.Category))
	}

	query := "SELECT " + notificationColumns + " FROM notifications WHERE " +
		strings.Join(conditions, " AND ") +
		" ORDER BY created_at DESC, seq ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// GetNotificationByID retrieves a single notification owned by userID.
func (s *SQLiteStore) GetNotificationByID(
	ctx context.Context,
	userID, id string,
) (*model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting notification %s: %w", id, err)
		}
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}

	n, err := scanNotification(rows)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotificationRead marks a single notification as read. Marking an
// already-read notification succeeds.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	userID, id string,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of userID as
// read and returns how many changed.
func (s *SQLiteStore) MarkAllNotificationsRead(
	ctx context.Context,
	userID string,
) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0", userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// CountUnreadNotifications returns the number of unread notifications.
func (s *SQLiteStore) CountUnreadNotifications(
	ctx context.Context,
	userID string,
) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0", userID,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// DeleteNotification removes a single notification.
func (s *SQLiteStore) DeleteNotification(
	ctx context.Context,
	userID, id string,
) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNotificationsBefore removes notifications created before cutoff.
func (s *SQLiteStore) DeleteNotificationsBefore(
	ctx context.Context,
	userID string,
	cutoff time.Time,
) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ? AND created_at < ?",
		userID, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// TrimNotifications keeps the newest keep notifications of userID and
// deletes the rest.
func (s *SQLiteStore) TrimNotifications(
	ctx context.Context,
	userID string,
	keep int,
) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM notifications
			WHERE user_id = ?
			ORDER BY created_at DESC, seq ASC
			LIMIT ?
		)`,
		userID, userID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("trimming notifications to %d: %w", keep, err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n        model.Notification
		category string
		readInt  int
	)

	err := rows.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Description, &n.Href,
		&readInt, &category, &n.Icon, &n.Date,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Category = model.NotificationCategory(category)
	n.Read = readInt != 0

	return n, nil
}

// notFound converts sql.ErrNoRows into ErrNotFound for the named record.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("getting %s %s: %w", what, id, err)
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
