package redis

import (
	"context"
	"testing"
	"time"

	"finance-tracker-backend/internal/features/bot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, time.Hour), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	missing, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := &models.Session{
		State:     models.StateAwaitingAmount,
		Type:      "expense",
		Category:  "Food",
		UpdatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, 42, session))
	assert.True(t, mr.Exists("bot:session:42"))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingAmount, got.State)
	assert.Equal(t, "Food", got.Category)
	assert.True(t, session.UpdatedAt.Equal(got.UpdatedAt))

	require.NoError(t, store.Delete(ctx, 42))
	got, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 7, &models.Session{State: models.StateAwaitingEmail}))
	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}
