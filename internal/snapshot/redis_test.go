package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batcstore/batc-storefront/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisStore
// whose clock can be moved by reassigning store.now.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func testLines() []domain.CartLine {
	return []domain.CartLine{
		{Product: domain.Product{ID: "tee-01", Name: "Boma Ye Tee", Price: "$39.99"}, Quantity: 2},
		{
			Product:  domain.Product{ID: "hoodie-01", Name: "Vintage Hoodie", Price: "$60.99"},
			Variant:  &domain.Variant{ID: "v-l", Title: "L", Price: "$60.99", Available: true},
			Quantity: 1,
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session1", testLines()))

	lines, err := store.Load(ctx, "session1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "tee-01", lines[0].Product.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	require.NotNil(t, lines[1].Variant)
	assert.Equal(t, "v-l", lines[1].Variant.ID)
}

func TestLoad_Miss(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lines, err := store.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
	assert.Nil(t, lines)
}

func TestLoad_Idempotent(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session1", testLines()))

	first, err := store.Load(ctx, "session1")
	require.NoError(t, err)
	second, err := store.Load(ctx, "session1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSave_EmptyDeletesKey(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session1", testLines()))
	require.True(t, mr.Exists(snapshotKey("session1")))

	require.NoError(t, store.Save(ctx, "session1", nil))
	assert.False(t, mr.Exists(snapshotKey("session1")))

	_, err := store.Load(ctx, "session1")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
}

func TestLoad_MalformedSnapshotTreatedAsAbsent(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(snapshotKey("session1"), "{not json")

	lines, err := store.Load(context.Background(), "session1")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
	assert.Nil(t, lines)
	assert.False(t, mr.Exists(snapshotKey("session1")))
}

func TestLoad_ValidityWindow(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Now()
	store.now = func() time.Time { return start }
	require.NoError(t, store.Save(ctx, "session1", testLines()))

	// 1h59m after capture: still valid.
	store.now = func() time.Time { return start.Add(119 * time.Minute) }
	lines, err := store.Load(ctx, "session1")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	// 2h01m after capture: stale, discarded, key gone.
	store.now = func() time.Time { return start.Add(121 * time.Minute) }
	lines, err = store.Load(ctx, "session1")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
	assert.Nil(t, lines)
	assert.False(t, mr.Exists(snapshotKey("session1")))
}

func TestLoad_ExactWindowBoundaryIsStale(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Now()
	store.now = func() time.Time { return start }
	require.NoError(t, store.Save(ctx, "session1", testLines()))

	store.now = func() time.Time { return start.Add(Window) }
	_, err := store.Load(ctx, "session1")
	assert.ErrorIs(t, err, ErrSnapshotMiss)
}

func TestSave_StampsCaptureTime(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	captured := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return captured }
	require.NoError(t, store.Save(context.Background(), "session1", testLines()))

	raw, err := mr.Get(snapshotKey("session1"))
	require.NoError(t, err)

	var snap domain.CartSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.True(t, snap.Timestamp.Equal(captured))
}
