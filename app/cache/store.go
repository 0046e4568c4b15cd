// Package cache is the in-process store for derived view regions. The
// invalidation resolver only computes region keys; this store is what marks
// them stale and refetches them.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"institute-admin/app/invalidation"
)

// Fetcher loads the fresh value of one region from its source of truth.
type Fetcher func(ctx context.Context) (interface{}, error)

type region struct {
	fetcher   Fetcher
	value     interface{}
	stale     bool
	fetchedAt time.Time
}

// Store keeps region values with a stale mark per region. A region with no
// registered fetcher can still be invalidated; Refetch on it simply drops the
// cached value.
type Store struct {
	mu      sync.Mutex
	regions map[invalidation.RegionKey]*region
	loading *LoadingRegistry
}

func NewStore(loading *LoadingRegistry) *Store {
	return &Store{
		regions: make(map[invalidation.RegionKey]*region),
		loading: loading,
	}
}

// Register attaches a fetcher to a region key.
func (s *Store) Register(key invalidation.RegionKey, fetcher Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.ensure(key)
	r.fetcher = fetcher
}

// Invalidate marks a region stale. The cached value stays readable until a
// refetch lands, so views keep rendering during the eventual-consistency
// window.
func (s *Store) Invalidate(key invalidation.RegionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(key).stale = true
}

// Refetch reloads a region through its fetcher and clears the stale mark. A
// fetch failure leaves the region stale; the next invalidation cycle retries.
func (s *Store) Refetch(ctx context.Context, key invalidation.RegionKey) error {
	s.mu.Lock()
	r := s.ensure(key)
	fetcher := r.fetcher
	s.mu.Unlock()

	if fetcher == nil {
		s.mu.Lock()
		r.value = nil
		r.stale = false
		s.mu.Unlock()
		return nil
	}

	ticket := s.loading.Acquire(string(key))
	defer ticket.Release()

	value, err := fetcher(ctx)
	if err != nil {
		log.Printf("Refetch for region %s failed: %v", key, err)
		return err
	}

	s.mu.Lock()
	r.value = value
	r.stale = false
	r.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Get returns the cached value and whether the region is currently stale.
func (s *Store) Get(key invalidation.RegionKey) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regions[key]
	if !ok || r.value == nil {
		return nil, false
	}
	return r.value, !r.stale
}

// StaleKeys lists every region currently marked stale.
func (s *Store) StaleKeys() []invalidation.RegionKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []invalidation.RegionKey
	for key, r := range s.regions {
		if r.stale {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *Store) ensure(key invalidation.RegionKey) *region {
	r, ok := s.regions[key]
	if !ok {
		r = &region{}
		s.regions[key] = r
	}
	return r
}
