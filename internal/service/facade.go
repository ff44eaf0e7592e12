// Package service is the facade every transport goes through. It owns the
// cross-entity rules: reference checks, uniqueness, ownership and cascades.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/hbnb/internal/domain"
)

// repository is the store contract the facade depends on. Both
// store/memory and store/sqlite satisfy it.
type repository[T any] interface {
	Add(ctx context.Context, entity T) error
	Get(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Filter(ctx context.Context, keep func(T) bool) ([]T, error)
	Update(ctx context.Context, id string, mutate func(T) error) (T, error)
	Delete(ctx context.Context, id string) error
	GetByAttribute(ctx context.Context, name string, value any) (T, error)
	GetAllByAttribute(ctx context.Context, name string, value any) ([]T, error)
	Clear(ctx context.Context) error
}

type (
	userRepository    = repository[*domain.User]
	placeRepository   = repository[*domain.Place]
	reviewRepository  = repository[*domain.Review]
	amenityRepository = repository[*domain.Amenity]
)

type Facade struct {
	users     userRepository
	places    placeRepository
	reviews   reviewRepository
	amenities amenityRepository
	hasher    domain.PasswordHasher
	logger    *slog.Logger

	// mu serializes every mutation so that check-then-write sequences such
	// as email uniqueness and one review per user and place are atomic.
	mu sync.Mutex
}

func NewFacade(
	users userRepository,
	places placeRepository,
	reviews reviewRepository,
	amenities amenityRepository,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
) *Facade {
	return &Facade{
		users:     users,
		places:    places,
		reviews:   reviews,
		amenities: amenities,
		hasher:    hasher,
		logger:    logger,
	}
}

// Reset empties every store.
func (f *Facade) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, clear := range []func(context.Context) error{
		f.reviews.Clear, f.places.Clear, f.amenities.Clear, f.users.Clear,
	} {
		if err := clear(ctx); err != nil {
			return err
		}
	}
	f.logger.Info("all stores cleared")
	return nil
}
