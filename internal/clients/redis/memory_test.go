package redis

import (
	"context"
	"testing"
	"time"
)

func TestMemoryWindowStoreIncrAndExpiry(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryWindowStoreAt(func() time.Time { return now })
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(ctx, "w:u1", 5*time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Fatalf("Incr = %d, want %d", got, want)
		}
	}

	n, err := store.Count(ctx, "w:u1")
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v; want 3", n, err)
	}

	// Window anchored at first event: advancing past the TTL resets it.
	now = now.Add(5*time.Minute + time.Second)
	n, err = store.Count(ctx, "w:u1")
	if err != nil || n != 0 {
		t.Fatalf("Count after expiry = %d, %v; want 0", n, err)
	}
	got, err := store.Incr(ctx, "w:u1", 5*time.Minute)
	if err != nil || got != 1 {
		t.Fatalf("Incr after expiry = %d, %v; want 1", got, err)
	}
}

func TestMemoryWindowStoreBytes(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryWindowStoreAt(func() time.Time { return now })
	ctx := context.Background()

	if _, ok, err := store.GetBytes(ctx, "cache:k"); ok || err != nil {
		t.Fatalf("GetBytes on empty store: ok=%v err=%v", ok, err)
	}
	if err := store.SetBytes(ctx, "cache:k", []byte("payload"), 30*time.Second); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}
	raw, ok, err := store.GetBytes(ctx, "cache:k")
	if err != nil || !ok || string(raw) != "payload" {
		t.Fatalf("GetBytes = %q, %v, %v", raw, ok, err)
	}

	now = now.Add(31 * time.Second)
	if _, ok, _ := store.GetBytes(ctx, "cache:k"); ok {
		t.Fatalf("GetBytes after TTL should miss")
	}
}
