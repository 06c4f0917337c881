package caches

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestMemoryStoreGetSetExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get before expiry = %q, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("Get after expiry: want miss")
	}
}

func TestMemoryStoreSetsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.SAdd(ctx, "cart", time.Hour, "7", "3")
	_ = s.SAdd(ctx, "cart", time.Hour, "7")
	_ = s.SRem(ctx, "cart", "99")

	got, _ := s.SMembers(ctx, "cart")
	if want := []string{"3", "7"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SMembers = %v, want %v", got, want)
	}

	_ = s.SRem(ctx, "cart", "3")
	_ = s.SRem(ctx, "cart", "3")
	got, _ = s.SMembers(ctx, "cart")
	if want := []string{"7"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SMembers after remove = %v, want %v", got, want)
	}

	_ = s.Del(ctx, "cart")
	got, _ = s.SMembers(ctx, "cart")
	if len(got) != 0 {
		t.Fatalf("SMembers after Del = %v, want empty", got)
	}
}
