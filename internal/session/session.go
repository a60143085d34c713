// Package session caches the signed-in identity handed out by the hosted
// auth provider. Verifying credentials is the provider's job; this package
// only remembers the result between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
)

// Key is the versioned storage key for the cached session.
const Key = "noteflow_session_v1"

// ErrSignedOut is returned when no valid session is cached.
var ErrSignedOut = errors.New("not signed in")

// Session is the cached identity of the current user.
type Session struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the session has an expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Manager signs users in and out against a kv.Store.
type Manager struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a session manager over s.
func NewManager(s kv.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: s, logger: logger, now: time.Now}
}

// SignIn caches a session for userID. A zero ttl never expires.
func (m *Manager) SignIn(ctx context.Context, userID, token string, ttl time.Duration) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, fmt.Errorf("user id must not be empty")
	}

	s := Session{UserID: userID, AccessToken: token}
	if ttl > 0 {
		s.ExpiresAt = m.now().Add(ttl).UTC()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, Key, string(data)); err != nil {
		return Session{}, fmt.Errorf("caching session: %w", err)
	}

	m.logger.Info("signed in", zap.String("user", userID))
	return s, nil
}

// SignOut drops the cached session.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the cached session, or ErrSignedOut when there is none
// or it has expired. Expired sessions are removed.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	raw, ok, err := m.store.Get(ctx, Key)
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return Session{}, ErrSignedOut
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.UserID == "" {
		m.logger.Warn("discarding unreadable session cache")
		_ = m.store.Delete(ctx, Key)
		return Session{}, ErrSignedOut
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, Key)
		return Session{}, ErrSignedOut
	}
	return s, nil
}
