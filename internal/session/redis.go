package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

// RedisStore persists sessions in a Redis-compatible backend (Redis,
// Dragonfly, Valkey, KeyDB all speak the same protocol through go-redis).
// Every save rewrites the full state with a fresh TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store from a redis:// URL. The
// connection is not verified here; the fallback store owns the one-shot
// PING handshake.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

// Ping verifies the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Save writes the serialized state with the configured TTL (SETEX).
func (r *RedisStore) Save(ctx context.Context, id string, state *querystate.QueryState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.client.SetEx(ctx, KeyPrefix+id, raw, r.ttl).Err()
}

// Load reads and decodes the stored state, or returns ErrNotFound.
func (r *RedisStore) Load(ctx context.Context, id string) (*querystate.QueryState, error) {
	raw, err := r.client.Get(ctx, KeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state querystate.QueryState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	state.Normalize()
	return &state, nil
}

// Delete removes the session key.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, KeyPrefix+id).Err()
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
