// Package notify implements the per-user notification inbox on top of
// the persistence layer: validation, id assignment, read-state
// transitions, retention and the producers used by study flows.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
)

var (
	// ErrNotFound is returned for operations on an unknown notification id.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicateID is returned when adding a notification whose id exists.
	ErrDuplicateID = store.ErrDuplicateID
)

// RetentionPolicy bounds how many notifications a user keeps. Zero fields
// mean unbounded.
type RetentionPolicy struct {
	MaxAge   time.Duration
	MaxCount int
}

// Unbounded reports whether the policy never removes anything.
func (p RetentionPolicy) Unbounded() bool {
	return p.MaxAge <= 0 && p.MaxCount <= 0
}

// PolicyFromConfig converts the configured retention into a policy.
func PolicyFromConfig(cfg model.NotificationConfig) RetentionPolicy {
	return RetentionPolicy{
		MaxAge:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		MaxCount: cfg.MaxCount,
	}
}

// Option configures a Center.
type Option func(*Center)

// WithLogger sets the logger used for notification events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithRetention sets the retention policy applied by Prune.
func WithRetention(p RetentionPolicy) Option {
	return func(c *Center) { c.retention = p }
}

// Center hands out per-user inboxes backed by a NotificationStore.
type Center struct {
	store     store.NotificationStore
	logger    *zap.Logger
	now       func() time.Time
	retention RetentionPolicy
}

// NewCenter creates a notification center over s.
func NewCenter(s store.NotificationStore, opts ...Option) *Center {
	c := &Center{
		store:  s,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retention returns the configured retention policy.
func (c *Center) Retention() RetentionPolicy {
	return c.retention
}

// Inbox returns the notification collection of userID.
func (c *Center) Inbox(userID string) *Inbox {
	return &Inbox{center: c, userID: userID}
}

// Inbox is one user's ordered notification collection.
type Inbox struct {
	center *Center
	userID string
}

// UserID returns the inbox owner.
func (in *Inbox) UserID() string {
	return in.userID
}

// List returns every notification, newest first. Notifications with equal
// dates keep their insertion order.
func (in *Inbox) List(ctx context.Context) ([]model.Notification, error) {
	return in.center.store.GetNotifications(ctx, store.NotificationFilter{UserID: in.userID})
}

// Unread returns the unread notifications, newest first.
func (in *Inbox) Unread(ctx context.Context) ([]model.Notification, error) {
	return in.center.store.GetNotifications(ctx, store.NotificationFilter{
		UserID:     in.userID,
		UnreadOnly: true,
	})
}

// Filter narrows a Find query. Results keep the List order.
type Filter struct {
	UnreadOnly bool
	Category   *model.NotificationCategory
	Limit      int
	Offset     int
}

// Find returns the notifications matching f.
func (in *Inbox) Find(ctx context.Context, f Filter) ([]model.Notification, error) {
	if f.Category != nil && !f.Category.Valid() {
		return nil, fmt.Errorf("invalid notification category %q", *f.Category)
	}
	return in.center.store.GetNotifications(ctx, store.NotificationFilter{
		UserID:     in.userID,
		UnreadOnly: f.UnreadOnly,
		Category:   f.Category,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

// Get returns a single notification.
func (in *Inbox) Get(ctx context.Context, id string) (*model.Notification, error) {
	return in.center.store.GetNotificationByID(ctx, in.userID, id)
}

// Add validates n and stores it unread. A missing id or date is filled
// in; an id that already exists yields ErrDuplicateID. The stored
// notification is returned.
func (in *Inbox) Add(ctx context.Context, n model.Notification) (model.Notification, error) {
	if strings.TrimSpace(n.Title) == "" {
		return model.Notification{}, fmt.Errorf("notification title must not be empty")
	}
	if !n.Category.Valid() {
		return model.Notification{}, fmt.Errorf("invalid notification category %q", n.Category)
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Date.IsZero() {
		n.Date = in.center.now()
	}
	n.UserID = in.userID
	n.Read = false

	if err := in.center.store.CreateNotification(ctx, n); err != nil {
		return model.Notification{}, err
	}

	in.center.logger.Debug("notification added",
		zap.String("user", in.userID),
		zap.String("id", n.ID),
		zap.String("category", string(n.Category)),
	)
	return n, nil
}

// MarkRead sets read on the notification with the given id. It is
// idempotent and returns ErrNotFound for unknown ids.
func (in *Inbox) MarkRead(ctx context.Context, id string) error {
	return in.center.store.MarkNotificationRead(ctx, in.userID, id)
}

// MarkAllRead sets read on every notification.
func (in *Inbox) MarkAllRead(ctx context.Context) error {
	changed, err := in.center.store.MarkAllNotificationsRead(ctx, in.userID)
	if err != nil {
		return err
	}
	in.center.logger.Debug("notifications marked read",
		zap.String("user", in.userID),
		zap.Int64("changed", changed),
	)
	return nil
}

// UnreadCount returns the number of unread notifications.
func (in *Inbox) UnreadCount(ctx context.Context) (int, error) {
	return in.center.store.CountUnreadNotifications(ctx, in.userID)
}

// Remove deletes the notification with the given id.
func (in *Inbox) Remove(ctx context.Context, id string) error {
	return in.center.store.DeleteNotification(ctx, in.userID, id)
}

// Prune applies the center's retention policy and returns how many
// notifications were removed.
func (in *Inbox) Prune(ctx context.Context) (int64, error) {
	p := in.center.retention
	if p.Unbounded() {
		return 0, nil
	}

	var removed int64
	if p.MaxAge > 0 {
		n, err := in.center.store.DeleteNotificationsBefore(ctx, in.userID, in.center.now().Add(-p.MaxAge))
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if p.MaxCount > 0 {
		n, err := in.center.store.TrimNotifications(ctx, in.userID, p.MaxCount)
		if err != nil {
			return removed, err
		}
		removed += n
	}

	if removed > 0 {
		in.center.logger.Info("notifications pruned",
			zap.String("user", in.userID),
			zap.Int64("removed", removed),
		)
	}
	return removed, nil
}

// IsNotFound reports whether err (or any error in its chain) is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateID reports whether err (or any error in its chain) is
// ErrDuplicateID.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}
