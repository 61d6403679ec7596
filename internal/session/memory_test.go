package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiresSessions(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	s, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	got, err := store.Lookup(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	now = now.Add(time.Hour)
	_, err = store.Lookup(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDestroy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Destroy(ctx, s.ID))

	_, err = store.Lookup(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Destroy(ctx, "missing"))
}

func TestMemoryStoreSweepsOnCreate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Create(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = store.Create(ctx, "user-2", time.Minute)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.sessions, 1)
}
