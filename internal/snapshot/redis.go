package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/batcstore/batc-storefront/internal/domain"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		window: Window,
		now:    time.Now,
	}
}

type RedisStore struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	key := snapshotKey(sessionID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap domain.CartSnapshot
	if err2 := json.Unmarshal(data, &snap); err2 != nil {
		// Corrupt snapshots are treated as absent, not surfaced.
		log.Printf("discarding malformed cart snapshot for %s: %v", sessionID, err2)
		r.deleteQuietly(ctx, key)
		return nil, ErrSnapshotMiss
	}

	if r.now().Sub(snap.Timestamp) >= r.window {
		r.deleteQuietly(ctx, key)
		return nil, ErrSnapshotMiss
	}

	return snap.Lines, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return r.Delete(ctx, sessionID)
	}

	snap := domain.CartSnapshot{Lines: lines, Timestamp: r.now()}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}

	// The key also expires server-side at the window boundary so abandoned
	// sessions don't pile up; the authoritative check stays in Load.
	if err := r.client.Set(ctx, snapshotKey(sessionID), string(data), r.window).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) deleteQuietly(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("failed to delete stale snapshot %s: %v", key, err)
	}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
