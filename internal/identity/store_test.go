package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type fakeKV struct {
	data map[string]string
	ttl  time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttl = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) SessionKey(sessionKey string) string {
	return "test:" + sessionKey
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, err := NewRedisSessionStore(kv, "laptop", time.Hour)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}

	if id, err := store.Load(ctx); err != nil || id != nil {
		t.Fatalf("expected empty store, got %+v %v", id, err)
	}

	want := &Identity{ID: uuid.New(), Email: "ada@example.com", FirstName: "Ada", Role: "USER"}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := kv.data["test:laptop"]; !ok || kv.ttl != time.Hour {
		t.Fatalf("expected keyed entry with ttl, got %v %v", kv.data, kv.ttl)
	}

	got, err := store.Load(ctx)
	if err != nil || got == nil || *got != *want {
		t.Fatalf("Load: %+v %v", got, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if id, _ := store.Load(ctx); id != nil {
		t.Fatal("expected cleared session")
	}
}

func TestRedisSessionStoreCorruptEntryIsSignedOut(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data["test:default"] = "{not json"
	store, _ := NewRedisSessionStore(kv, "default", 0)

	id, err := store.Load(ctx)
	if err != nil || id != nil {
		t.Fatalf("expected signed out, got %+v %v", id, err)
	}
	if _, ok := kv.data["test:default"]; ok {
		t.Fatal("corrupt entry should be removed")
	}
}

func TestRedisSessionStoreSurfacesBackendErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	store, _ := NewRedisSessionStore(kv, "default", 0)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestNewRedisSessionStoreValidation(t *testing.T) {
	if _, err := NewRedisSessionStore(nil, "x", 0); err == nil {
		t.Fatal("expected nil client error")
	}
	if _, err := NewRedisSessionStore(newFakeKV(), "", 0); err == nil {
		t.Fatal("expected empty key error")
	}
}
