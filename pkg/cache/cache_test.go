package cache

import (
	"context"
	"testing"
	"time"
)

func TestGetFreshEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	if err := c.Set(ctx, "fear_greed_index_latest", map[string]float64{"value": 42}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got map[string]float64
	found, err := c.Get(ctx, "fear_greed_index_latest", &got, time.Minute)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected hit")
	}
	if got["value"] != 42 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestExpiredEntryIsDeleted(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore()
	store.SetClock(func() time.Time { return now })
	c := New(store, WithClock(func() time.Time { return now }))

	if err := c.Set(ctx, "k", 1.0); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(2 * time.Minute)
	var v float64
	found, err := c.Get(ctx, "k", &v, time.Minute)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected miss for expired entry")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry still in store")
	}

	// Subsequent read also misses.
	found, _ = c.Get(ctx, "k", &v, time.Minute)
	if found {
		t.Fatalf("expected second miss")
	}
}

func TestDefaultTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore()
	store.SetClock(func() time.Time { return now })
	c := New(store, WithClock(func() time.Time { return now }), WithDefaultTTL(10*time.Minute))

	if err := c.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(6 * time.Minute)

	var v string
	found, _ := c.Get(ctx, "k", &v, 0)
	if !found {
		t.Fatalf("expected hit within default TTL")
	}
	if v != "v" {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store)

	_ = c.Set(ctx, "a", 1)
	_ = c.Set(ctx, "b", 2)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	var v int
	if found, _ := c.Get(ctx, "a", &v, time.Minute); found {
		t.Fatalf("expected miss after clear")
	}
}

func TestKeyHelpers(t *testing.T) {
	if LatestKey("mvrv_ratio") != "mvrv_ratio_latest" {
		t.Fatalf("unexpected latest key")
	}
	if HistoryKey("hash_rate", 30) != "hash_rate_history_30" {
		t.Fatalf("unexpected history key")
	}
}
