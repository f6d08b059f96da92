package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/bookstore/pkg/redis"
)

// Store persists the signed-in identity between runs of the client.
type Store interface {
	Load(ctx context.Context) (*Identity, error)
	Save(ctx context.Context, id *Identity) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the identity for the lifetime of the process only.
type MemoryStore struct {
	mu sync.Mutex
	id *Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == nil {
		return nil, nil
	}
	cp := *m.id
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, id *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == nil {
		m.id = nil
		return nil
	}
	cp := *id
	m.id = &cp
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.Save(ctx, nil)
}

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionKey string) string
}

// RedisSessionStore keeps the identity in redis under a per-client session key.
type RedisSessionStore struct {
	client kv
	key    string
	ttl    time.Duration
}

var _ kv = (*redis.Client)(nil)

func NewRedisSessionStore(client kv, sessionKey string, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sessionKey == "" {
		return nil, fmt.Errorf("session key required")
	}
	return &RedisSessionStore{client: client, key: client.SessionKey(sessionKey), ttl: ttl}, nil
}

func (r *RedisSessionStore) Load(ctx context.Context) (*Identity, error) {
	raw, err := r.client.Get(ctx, r.key)
	if redis.IsMiss(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		// an unreadable entry is treated as signed out
		_ = r.client.Del(ctx, r.key)
		return nil, nil
	}
	return &id, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, id *Identity) error {
	if id == nil {
		return r.Clear(ctx)
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, string(payload), r.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
