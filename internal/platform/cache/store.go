package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agsa/field-scheduler/internal/platform/resilience"
)

type record struct {
	value    any
	deadline time.Time
}

func (r record) expired(now time.Time) bool {
	return !r.deadline.IsZero() && !r.deadline.After(now)
}

// Store is an in-process cache with a single TTL for every entry. A TTL of
// zero or less keeps entries until they are deleted.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	ttl     time.Duration
	group   resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		records: make(map[string]record),
		ttl:     ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	r, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if r.expired(time.Now()) {
		s.mu.Lock()
		delete(s.records, key)
		s.mu.Unlock()
		return nil, false
	}

	return r.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	r := record{value: value}
	if s.ttl > 0 {
		r.deadline = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.records[key] = r
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			delete(s.records, key)
		}
	}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value for key or runs loader once, even when
// called concurrently, and caches its result.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		// A concurrent leader may have populated the entry already.
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})

	return value, err
}
