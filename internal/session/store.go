// Package session keeps drafts in process memory between requests. Drafts
// are never persisted and expire after an idle TTL.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, expired or foreign drafts
var ErrNotFound = errors.New("draft not found")

type entry[T any] struct {
	mu      sync.Mutex
	owner   string
	value   *T
	touched time.Time

	// set once the entry leaves the map; waiters on mu must not touch value
	removed atomic.Bool
}

// Store holds drafts of type T keyed by a generated id
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store whose drafts expire after ttl without access
func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create stores value for owner and returns its id
func (s *Store[T]) Create(owner string, value *T) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = &entry[T]{owner: owner, value: value, touched: s.now()}
	s.mu.Unlock()

	return id
}

// With runs fn on the draft while holding its lock. Calls on the same draft
// are serialized; distinct drafts proceed independently.
func (s *Store[T]) With(id, owner string, fn func(*T) error) error {
	e, err := s.lookup(id, owner)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return ErrNotFound
	}
	return fn(e.value)
}

// Consume runs fn like With and discards the draft when fn succeeds, before
// the lock is released. A caller queued behind a successful Consume gets
// ErrNotFound.
func (s *Store[T]) Consume(id, owner string, fn func(*T) error) error {
	e, err := s.lookup(id, owner)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return ErrNotFound
	}
	if err := fn(e.value); err != nil {
		return err
	}

	e.removed.Store(true)
	s.mu.Lock()
	if s.entries[id] == e {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	return nil
}

// Delete discards a draft
func (s *Store[T]) Delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.owner != owner {
		return ErrNotFound
	}
	e.removed.Store(true)
	delete(s.entries, id)
	return nil
}

// Len returns the number of drafts held, expired or not
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired drafts and returns how many were dropped
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, e := range s.entries {
		if now.Sub(e.touched) > s.ttl {
			e.removed.Store(true)
			delete(s.entries, id)
			dropped++
		}
	}
	return dropped
}

// Janitor sweeps every interval until ctx is done
func (s *Store[T]) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store[T]) lookup(id, owner string) (*entry[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.owner != owner {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.Sub(e.touched) > s.ttl {
		e.removed.Store(true)
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	e.touched = now
	return e, nil
}
