package caches

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the single-process fallback used when REDIS_URL is unset.
type MemoryStore struct {
	mu   sync.Mutex
	now  func() time.Time
	vals map[string]memEntry
	sets map[string]memSet
}

type memEntry struct {
	val     string
	expires time.Time
}

type memSet struct {
	members map[string]struct{}
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:  time.Now,
		vals: map[string]memEntry{},
		sets: map[string]memSet{},
	}
}

func expired(exp, now time.Time) bool {
	return !exp.IsZero() && now.After(exp)
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.vals[key]
	if !ok {
		return "", false, nil
	}
	if expired(e.expires, s.now()) {
		delete(s.vals, key)
		return "", false, nil
	}
	return e.val, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, val string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = memEntry{val: val, expires: s.deadline(ttl)}
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.vals, k)
		delete(s.sets, k)
	}
	return nil
}

func (s *MemoryStore) SAdd(_ context.Context, key string, ttl time.Duration, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok || expired(set.expires, s.now()) {
		set = memSet{members: map[string]struct{}{}}
	}
	for _, m := range members {
		set.members[m] = struct{}{}
	}
	if ttl > 0 {
		set.expires = s.deadline(ttl)
	}
	s.sets[key] = set
	return nil
}

func (s *MemoryStore) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set.members, m)
	}
	return nil
}

// SMembers returns members sorted, so callers get a stable order.
func (s *MemoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return []string{}, nil
	}
	if expired(set.expires, s.now()) {
		delete(s.sets, key)
		return []string{}, nil
	}
	out := make([]string, 0, len(set.members))
	for m := range set.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
