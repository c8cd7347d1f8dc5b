package counter

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreIncrementAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	expireAt := time.Now().Add(time.Hour)

	for want := int64(1); want <= 3; want++ {
		got, err := store.Increment(ctx, "ratelimit:u1:image:hour:2026-8-26-10", expireAt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	count, err := store.Get(ctx, "ratelimit:u1:image:hour:2026-8-26-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestMemoryStoreExpiredBucketReadsAsZero(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	past := time.Now().Add(-time.Minute)
	if _, err := store.Increment(ctx, "k", past); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expired bucket should read as 0, got %d", count)
	}

	// A fresh increment after expiry restarts the bucket at 1.
	got, err := store.Increment(ctx, "k", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected restart at 1, got %d", got)
	}
}

func TestMemoryStoreTryConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	expireAt := time.Now().Add(time.Hour)

	for i := 0; i < 2; i++ {
		allowed, _, err := store.TryConsume(ctx, "k", 2, expireAt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("consume %d should be allowed", i+1)
		}
	}

	allowed, count, err := store.TryConsume(ctx, "k", 2, expireAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("third consume should be denied")
	}
	if count != 2 {
		t.Fatalf("denied consume must not increment, got %d", count)
	}
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	if _, err := store.Increment(ctx, "stale", now.Add(-time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Increment(ctx, "fresh", now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if removed := store.DeleteExpired(now); removed != 1 {
		t.Fatalf("expected 1 expired bucket removed, got %d", removed)
	}

	count, err := store.Get(ctx, "fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("fresh bucket should survive the sweep, got %d", count)
	}
}
