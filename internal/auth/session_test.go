package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/igrejaunida/backend/internal/models"
)

// fakeKV is an in-memory stand-in for the Redis commands SessionStore uses.
type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case string:
		f.data[key] = v
	case []byte:
		f.data[key] = string(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func testResolution() *Resolution {
	return &Resolution{
		User:         &models.ApplicationUser{ID: 5, Email: "ana@church.org", OrganizationID: 3},
		Organization: &models.Organization{ID: 3, Name: "Igreja Central"},
	}
}

func TestSessionSaveAndGet(t *testing.T) {
	store := NewSessionStore(newFakeKV(), time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "jti-1", testResolution()))

	sess, err := store.Get(ctx, "jti-1")
	require.NoError(t, err)
	require.Equal(t, int64(5), sess.User.ID)
	require.Equal(t, int64(3), sess.Organization.ID)
	require.False(t, sess.ResolvedAt.IsZero())
}

func TestSessionGetMiss(t *testing.T) {
	store := NewSessionStore(newFakeKV(), time.Hour, nil)

	_, err := store.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionGetMalformedDropsEntry(t *testing.T) {
	kv := newFakeKV()
	kv.data["session:broken"] = "{not json"
	store := NewSessionStore(kv, time.Hour, nil)

	_, err := store.Get(context.Background(), "broken")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.NotContains(t, kv.data, "session:broken")
}

func TestSessionDeleteIdempotent(t *testing.T) {
	store := NewSessionStore(newFakeKV(), time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "jti-1", testResolution()))
	require.NoError(t, store.Delete(ctx, "jti-1"))
	require.NoError(t, store.Delete(ctx, "jti-1"))

	_, err := store.Get(ctx, "jti-1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsAreIsolatedByTokenID(t *testing.T) {
	store := NewSessionStore(newFakeKV(), time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "jti-1", testResolution()))

	other := testResolution()
	other.User.ID = 6
	require.NoError(t, store.Save(ctx, "jti-2", other))

	first, err := store.Get(ctx, "jti-1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "jti-2")
	require.NoError(t, err)
	require.Equal(t, int64(5), first.User.ID)
	require.Equal(t, int64(6), second.User.ID)
}

func TestOAuthStateSingleUse(t *testing.T) {
	store := NewSessionStore(newFakeKV(), time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, store.SaveOAuthState(ctx, "state-1", 10*time.Minute))

	ok, err := store.TakeOAuthState(ctx, "state-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.TakeOAuthState(ctx, "state-1")
	require.NoError(t, err)
	require.False(t, ok)
}
