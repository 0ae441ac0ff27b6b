package settings

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_DefaultsWhenMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	stamped := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	in := Defaults()
	in.BusinessName = "Bright Smile Dental"
	in.Notifications = false
	in.UpdatedAt = &stamped

	require.NoError(t, store.Set(ctx, in))
	assert.True(t, mr.Exists(DefaultKey))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bright Smile Dental", got.BusinessName)
	assert.False(t, got.Notifications)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, stamped.Equal(*got.UpdatedAt))
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set(DefaultKey, "{not json"))

	_, err := store.Get(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), Defaults()))
}

func TestPreferences_FollowsStore(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	prefs := Preferences{Store: store}

	enabled, err := prefs.NotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	off := Defaults()
	off.Notifications = false
	require.NoError(t, store.Set(ctx, off))

	enabled, err = prefs.NotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = Preferences{}.NotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}
