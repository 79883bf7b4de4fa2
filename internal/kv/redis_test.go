package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStoreFromClient(client), mr
}

func TestSetGetDel(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != "v1" {
		t.Fatalf("value mismatch: got %q want %q", got, "v1")
	}

	if err := store.Del(ctx, "k1"); err != nil {
		t.Fatalf("Del error: %v", err)
	}
	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Del, got %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDel_Absent(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	if err := store.Del(context.Background(), "absent"); err != nil {
		t.Fatalf("deleting absent key should not error: %v", err)
	}
}

func TestGetDel_SingleConsumer(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "once", "payload", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := store.GetDel(ctx, "once")
	if err != nil {
		t.Fatalf("first GetDel error: %v", err)
	}
	if got != "payload" {
		t.Fatalf("value mismatch: got %q", got)
	}

	if _, err := store.GetDel(ctx, "once"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second GetDel should return ErrNotFound, got %v", err)
	}
}

func TestSet_TTLExpires(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "short", "v", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestIncr_Monotonic(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := store.Incr(ctx, "seq")
		if err != nil {
			t.Fatalf("Incr error: %v", err)
		}
		if n <= prev {
			t.Fatalf("counter not monotonic: %d after %d", n, prev)
		}
		prev = n
	}
}
