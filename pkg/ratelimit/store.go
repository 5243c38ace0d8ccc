package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces rate limit keys in Redis.
const KeyPrefix = "ghs:rate_limit"

// ErrNoState is returned by a Store when nothing has been recorded for a key.
var ErrNoState = errors.New("no rate limit state")

// Store persists rate limit state.
type Store interface {
	Load(ctx context.Context, key string) (*State, error)
	Save(ctx context.Context, key string, state *State, ttl time.Duration) error
}

// Key builds the storage key for a resource and token id.
func Key(resource, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, resource, tokenID)
}

// RedisStore shares rate limit state between processes through Redis.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Load reads the state stored under key.
func (s *RedisStore) Load(ctx context.Context, key string) (*State, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal rate limit state: %w", err)
	}
	return &state, nil
}

// Save stores state under key. A non-positive ttl keeps the key forever.
func (s *RedisStore) Save(ctx context.Context, key string, state *State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal rate limit state: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// MemoryStore keeps rate limit state in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]memoryEntry
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]memoryEntry)}
}

// Load returns a copy of the state stored under key.
func (s *MemoryStore) Load(_ context.Context, key string) (*State, error) {
	s.mu.RLock()
	entry, ok := s.states[key]
	s.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, ErrNoState
	}
	state := entry.state
	return &state, nil
}

// Save stores a copy of state under key.
func (s *MemoryStore) Save(_ context.Context, key string, state *State, ttl time.Duration) error {
	entry := memoryEntry{state: *state}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.states[key] = entry
	s.mu.Unlock()
	return nil
}
