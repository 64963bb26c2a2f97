package database

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok := store.Get(ctx, "key")
	if !ok || !bytes.Equal(value, []byte("value")) {
		t.Errorf("Expected stored value back, got %q ok=%v", value, ok)
	}

	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := store.Get(ctx, "key"); ok {
		t.Error("Expected key gone after delete")
	}
}

func TestMemoryStore_ExpiryEvictsLazily(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return current })

	_ = store.Set(ctx, "key", []byte("value"), time.Hour)

	if _, ok := store.Get(ctx, "key"); !ok {
		t.Error("Expected a hit inside the expiry window")
	}

	current = current.Add(2 * time.Hour)
	if _, ok := store.Get(ctx, "key"); ok {
		t.Error("Expected a miss past the expiry window")
	}
}

func TestMemoryStore_ZeroExpiryNeverEvicts(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return current })

	_ = store.Set(ctx, "key", []byte("value"), 0)

	current = current.AddDate(1, 0, 0)
	if _, ok := store.Get(ctx, "key"); !ok {
		t.Error("Expected zero-expiry entries to survive")
	}
}

func TestMemoryStore_IncrBy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrBy(ctx, "counter", 1, time.Hour)
		if err != nil {
			t.Fatalf("IncrBy failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected counter %d, got %d", want, got)
		}
	}

	got, err := store.IncrBy(ctx, "counter", 0, 0)
	if err != nil {
		t.Fatalf("IncrBy failed: %v", err)
	}
	if got != 3 {
		t.Errorf("Expected a zero delta to read 3, got %d", got)
	}
}

func TestMemoryStore_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := []byte("value")
	_ = store.Set(ctx, "key", original, 0)
	original[0] = 'X'

	value, _ := store.Get(ctx, "key")
	if !bytes.Equal(value, []byte("value")) {
		t.Errorf("Expected stored value isolated from caller mutation, got %q", value)
	}
}
