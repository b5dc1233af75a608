// Package optimistic keeps a local view of remote records that can be changed
// ahead of confirmation.
//
// Apply mutates the view immediately, runs the commit, and then either marks
// the record fresh with the confirmed value or rolls it back to the last
// known-good snapshot.
package optimistic

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownKey = errors.New("optimistic: unknown key")

// View is a record as currently shown, with Fresh=false while a commit is in flight.
type View[V any] struct {
	Value V
	Fresh bool
}

type record[V any] struct {
	current   V
	confirmed V
	fresh     bool
	version   uint64
}

// Store is safe for concurrent use.
type Store[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]*record[V]
	order []K
}

func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{items: make(map[K]*record[V])}
}

// Reconcile replaces the known-good value for key, discarding any optimistic state.
func (s *Store[K, V]) Reconcile(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[key]
	if !ok {
		rec = &record[V]{}
		s.items[key] = rec
		s.order = append(s.order, key)
	}
	rec.current = value
	rec.confirmed = value
	rec.fresh = true
	rec.version++
}

func (s *Store[K, V]) Get(key K) (View[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[key]
	if !ok {
		return View[V]{}, false
	}
	return View[V]{Value: rec.current, Fresh: rec.fresh}, true
}

// List returns all views in first-seen order.
func (s *Store[K, V]) List() []View[V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]View[V], 0, len(s.order))
	for _, key := range s.order {
		rec := s.items[key]
		views = append(views, View[V]{Value: rec.current, Fresh: rec.fresh})
	}
	return views
}

// Apply shows mutate(current) right away and then runs commit with it. On success
// the value returned by commit becomes the known-good snapshot. On failure the
// record goes back to the previous snapshot and the commit error is returned.
//
// When another Apply or Reconcile touched the key while commit was running, the
// newer state is left in place and only the snapshot is updated.
func (s *Store[K, V]) Apply(
	ctx context.Context,
	key K,
	mutate func(V) V,
	commit func(context.Context, V) (V, error),
) (V, error) {
	s.mu.Lock()
	rec, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		var zero V
		return zero, ErrUnknownKey
	}
	rec.current = mutate(rec.current)
	rec.fresh = false
	rec.version++
	version := rec.version
	pending := rec.current
	s.mu.Unlock()

	confirmed, err := commit(ctx, pending)

	s.mu.Lock()
	defer s.mu.Unlock()

	latest := rec.version == version
	if err != nil {
		if latest {
			rec.current = rec.confirmed
			rec.fresh = true
		}
		var zero V
		return zero, err
	}

	rec.confirmed = confirmed
	if latest {
		rec.current = confirmed
		rec.fresh = true
	}
	return confirmed, nil
}
