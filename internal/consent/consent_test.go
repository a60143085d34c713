package consent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "testprep_ai_cookie_consent_v1", Key(1))
	assert.Equal(t, "testprep_ai_cookie_consent_v1", Key(0))
	assert.Equal(t, "testprep_ai_cookie_consent_v2", Key(2))
}

func TestManager_DeclineHidesBanner(t *testing.T) {
	ctx := context.Background()
	m := NewManager(kv.NewMemory(), 1, nil)

	s, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unset, s)

	visible, err := m.BannerVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)

	require.NoError(t, m.Decline(ctx))

	for i := 0; i < 3; i++ {
		s, err = m.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, Declined, s)

		visible, err = m.BannerVisible(ctx)
		require.NoError(t, err)
		assert.False(t, visible)
	}
}

func TestManager_AcceptPersistsValue(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := NewManager(store, 1, nil)

	require.NoError(t, m.Accept(ctx))

	raw, ok, err := store.Get(ctx, "testprep_ai_cookie_consent_v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "accepted", raw)

	// A fresh manager over the same store sees the decision.
	s, err := NewManager(store, 1, nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Accepted, s)
}

func TestManager_VersionBumpResets(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	require.NoError(t, NewManager(store, 1, nil).Accept(ctx))

	v2 := NewManager(store, 2, nil)
	s, err := v2.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unset, s)
}

func TestManager_ClearedStoreResets(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := NewManager(store, 1, nil)

	require.NoError(t, m.Decline(ctx))
	store.Clear()

	visible, err := m.BannerVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestManager_UnknownValueReadsUnset(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, Key(1), "maybe"))

	s, err := NewManager(store, 1, nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unset, s)
}

type failingStore struct{ kv.Memory }

func (*failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func TestManager_ReadError(t *testing.T) {
	m := NewManager(&failingStore{}, 1, nil)
	_, err := m.Read(context.Background())
	assert.Error(t, err)

	_, err = m.BannerVisible(context.Background())
	assert.Error(t, err)
}
