// Package consent tracks the one-time cookie/privacy banner decision.
package consent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
)

// State is the persisted consent decision.
type State string

const (
	Unset    State = "unset"
	Accepted State = "accepted"
	Declined State = "declined"
)

// Notice is the text shown with the banner and the interactive prompt.
const Notice = "NoteFlow stores your preferences on this device to improve the study tools."

// keyPrefix is versioned by suffix. Bumping the version is the migration
// path: every user is asked again under the new key.
const keyPrefix = "testprep_ai_cookie_consent_v"

// CurrentVersion is the key version used when none is configured.
const CurrentVersion = 1

// Key returns the storage key for the given version.
func Key(version int) string {
	if version <= 0 {
		version = CurrentVersion
	}
	return fmt.Sprintf("%s%d", keyPrefix, version)
}

// Manager reads and writes the consent flag.
type Manager struct {
	store  kv.Store
	key    string
	logger *zap.Logger
}

// NewManager creates a consent manager over s using the key for version.
func NewManager(s kv.Store, version int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: s, key: Key(version), logger: logger}
}

// Key returns the storage key in use.
func (m *Manager) Key() string {
	return m.key
}

// Read returns the stored decision. A missing or unrecognised value
// reads as Unset.
func (m *Manager) Read(ctx context.Context) (State, error) {
	v, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		return Unset, fmt.Errorf("reading consent: %w", err)
	}
	if !ok {
		return Unset, nil
	}

	switch State(v) {
	case Accepted, Declined:
		return State(v), nil
	default:
		m.logger.Warn("ignoring unknown consent value", zap.String("key", m.key), zap.String("value", v))
		return Unset, nil
	}
}

// Accept records that the user accepted.
func (m *Manager) Accept(ctx context.Context) error {
	return m.write(ctx, Accepted)
}

// Decline records that the user declined.
func (m *Manager) Decline(ctx context.Context) error {
	return m.write(ctx, Declined)
}

// BannerVisible reports whether the banner should be shown, which is
// only the case while no decision is stored.
func (m *Manager) BannerVisible(ctx context.Context) (bool, error) {
	s, err := m.Read(ctx)
	if err != nil {
		return false, err
	}
	return s == Unset, nil
}

func (m *Manager) write(ctx context.Context, s State) error {
	if err := m.store.Set(ctx, m.key, string(s)); err != nil {
		return fmt.Errorf("writing consent: %w", err)
	}
	m.logger.Debug("consent recorded", zap.String("key", m.key), zap.String("state", string(s)))
	return nil
}
