package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

// FallbackStore fronts a Redis primary with an in-process fallback map.
//
// The mode decision happens exactly once: on first access a connect with
// a bounded deadline plus a PING either verifies Redis (useRedis stays
// true for the process lifetime) or flips the store to memory-only. Errors
// after a verified connection never flip the mode; each failing call
// degrades to the memory map individually, so a transient Redis outage
// cannot flap the store between backends.
type FallbackStore struct {
	redisURL       string
	ttl            time.Duration
	connectTimeout time.Duration

	initOnce sync.Once
	useRedis atomic.Bool
	redis    *RedisStore
	memory   *MemoryStore
}

// NewFallbackStore creates the store. No connection is attempted until
// the first operation.
func NewFallbackStore(redisURL string, ttl, connectTimeout time.Duration) *FallbackStore {
	return &FallbackStore{
		redisURL:       redisURL,
		ttl:            ttl,
		connectTimeout: connectTimeout,
		memory:         NewMemoryStore(),
	}
}

// init performs the one-shot backend decision.
func (f *FallbackStore) init() {
	f.initOnce.Do(func() {
		if f.redisURL == "" {
			log.Info().Msg("No Redis URL configured, using in-memory session store")
			return
		}

		store, err := NewRedisStore(f.redisURL, f.ttl)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid Redis URL, falling back to in-memory session store")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), f.connectTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, falling back to in-memory session store")
			_ = store.Close()
			return
		}

		f.redis = store
		f.useRedis.Store(true)
		log.Info().Msg("Connected to Redis for session storage")
	})
}

// Save writes to the live backend; a Redis failure after verification is
// logged and the state lands in the memory map instead.
func (f *FallbackStore) Save(ctx context.Context, id string, state *querystate.QueryState) error {
	f.init()
	if f.useRedis.Load() {
		err := f.redis.Save(ctx, id, state)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("session_id", id).Msg("Redis save failed, writing to memory store")
	}
	return f.memory.Save(ctx, id, state)
}

// Load reads from Redis first and checks the memory map when Redis has
// no value or fails; a session saved during a Redis hiccup stays
// reachable.
func (f *FallbackStore) Load(ctx context.Context, id string) (*querystate.QueryState, error) {
	f.init()
	if f.useRedis.Load() {
		state, err := f.redis.Load(ctx, id)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("session_id", id).Msg("Redis load failed, checking memory store")
		}
	}
	return f.memory.Load(ctx, id)
}

// Delete removes the session from both backends.
func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	f.init()
	if f.useRedis.Load() {
		if err := f.redis.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("Redis delete failed")
		}
	}
	return f.memory.Delete(ctx, id)
}

// UsingRedis reports whether the verified backend is Redis.
func (f *FallbackStore) UsingRedis() bool {
	f.init()
	return f.useRedis.Load()
}

// Close releases the Redis client when one was verified.
func (f *FallbackStore) Close() error {
	if f.redis != nil {
		return f.redis.Close()
	}
	return nil
}
