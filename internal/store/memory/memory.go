// Package memory is the default entity store: a keyed in-process container
// for one entity type. Values are cloned on the way in and out so callers
// never hold a reference into the store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vbonduro/hbnb/internal/domain"
)

type Store[T domain.Entity[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func New[T domain.Entity[T]]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

// Add stores a copy of entity under its id, replacing any existing entry.
func (s *Store[T]) Add(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.Meta().ID
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = entity.Clone()
	return nil
}

// Get returns a copy of the entity, or the zero value if id is unknown.
func (s *Store[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	e, ok := s.items[id]
	if !ok {
		return zero, nil
	}
	return e.Clone(), nil
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.Filter(ctx, nil)
}

// Filter returns copies of every entity accepted by keep, in insertion
// order. A nil keep accepts everything.
func (s *Store[T]) Filter(_ context.Context, keep func(T) bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		e := s.items[id].Clone()
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update runs mutate on a copy of the stored entity and, if it succeeds,
// stores the copy with a refreshed UpdatedAt. An unknown id is a no-op that
// returns the zero value.
func (s *Store[T]) Update(_ context.Context, id string, mutate func(T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	cur, ok := s.items[id]
	if !ok {
		return zero, nil
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return zero, err
	}
	meta := next.Meta()
	meta.ID = id
	meta.CreatedAt = cur.Meta().CreatedAt
	meta.Touch()
	s.items[id] = next
	return next.Clone(), nil
}

func (s *Store[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

func (s *Store[T]) GetByAttribute(_ context.Context, name string, value any) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	for _, id := range s.order {
		e := s.items[id]
		if matches(e, name, value) {
			return e.Clone(), nil
		}
	}
	return zero, nil
}

func (s *Store[T]) GetAllByAttribute(ctx context.Context, name string, value any) ([]T, error) {
	return s.Filter(ctx, func(e T) bool { return matches(e, name, value) })
}

func (s *Store[T]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]T)
	s.order = nil
	return nil
}

func matches[T domain.Entity[T]](e T, name string, value any) bool {
	v, ok := e.Attribute(name)
	return ok && v == value
}
