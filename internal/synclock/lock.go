// Package synclock guards the orchestrator's running state across
// processes. Overlapping sync triggers are harmless for the catalog
// (upserts are idempotent) but double the download load and clutter the
// run-log, so a second invocation is rejected while the lock is held.
package synclock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

// New builds a lock on key with a TTL staleness bound: a crashed holder
// frees the lock when the TTL expires rather than blocking syncs forever.
func New(client *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire returns false when another invocation holds the lock.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release deletes the lock only when this invocation still owns it; after
// a TTL expiry another run may hold the key under a different token.
func (l *Lock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	current, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if current != l.token {
		return nil
	}
	return l.client.Del(ctx, l.key).Err()
}
