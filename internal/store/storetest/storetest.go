// Package storetest holds the behaviour every entity store backend must
// share. Backend packages run it from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/hbnb/internal/domain"
)

// Store is the contract exercised by the suite.
type Store[T any] interface {
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

// Factories builds fresh, empty stores for each subtest.
type Factories struct {
	Amenities func(t *testing.T) Store[*domain.Amenity]
	Places    func(t *testing.T) Store[*domain.Place]
}

func Run(t *testing.T, f Factories) {
	t.Run("AddGet", func(t *testing.T) { testAddGet(t, f.Amenities(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, f.Amenities(t)) })
	t.Run("AddOverwrites", func(t *testing.T) { testAddOverwrites(t, f.Amenities(t)) })
	t.Run("GetAllOrder", func(t *testing.T) { testGetAllOrder(t, f.Amenities(t)) })
	t.Run("Filter", func(t *testing.T) { testFilter(t, f.Places(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, f.Places(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, f.Places(t)) })
	t.Run("UpdateMutatorError", func(t *testing.T) { testUpdateMutatorError(t, f.Places(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, f.Amenities(t)) })
	t.Run("ByAttribute", func(t *testing.T) { testByAttribute(t, f.Places(t)) })
	t.Run("Clear", func(t *testing.T) { testClear(t, f.Amenities(t)) })
	t.Run("ReadsAreCopies", func(t *testing.T) { testReadsAreCopies(t, f.Places(t)) })
}

func amenity(t *testing.T, name string) *domain.Amenity {
	t.Helper()
	a, err := domain.NewAmenity(domain.AmenityInput{Name: name})
	require.NoError(t, err)
	return a
}

func place(t *testing.T, title, owner string, price float64) *domain.Place {
	t.Helper()
	lat, lon := 10.0, 20.0
	p, err := domain.NewPlace(domain.PlaceInput{
		Title: title, Price: price, Latitude: &lat, Longitude: &lon, OwnerID: owner,
	})
	require.NoError(t, err)
	return p
}

func testAddGet(t *testing.T, s Store[*domain.Amenity]) {
	ctx := context.Background()
	a := amenity(t, "Wi-Fi")
	require.NoError(t, s.Add(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt.Time))
	assert.True(t, a.UpdatedAt.Equal(got.UpdatedAt.Time))
}

func testGetMissing(t *testing.T, s Store[*domain.Amenity]) {
	got, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testAddOverwrites(t *testing.T, s Store[*domain.Amenity]) {
	ctx := context.Background()
	a := amenity(t, "Wi-Fi")
	require.NoError(t, s.Add(ctx, a))

	replacement := amenity(t, "Pool")
	replacement.Metadata = a.Metadata
	require.NoError(t, s.Add(ctx, replacement))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pool", all[0].Name)
}

func testGetAllOrder(t *testing.T, s Store[*domain.Amenity]) {
	ctx := context.Background()
	names := []string{"Wi-Fi", "Pool", "Parking"}
	for _, n := range names {
		require.NoError(t, s.Add(ctx, amenity(t, n)))
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	var got []string
	for _, a := range all {
		got = append(got, a.Name)
	}
	assert.Equal(t, names, got)
}

func testFilter(t *testing.T, s Store[*domain.Place]) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, place(t, "Cheap", "o1", 50)))
	require.NoError(t, s.Add(ctx, place(t, "Dear", "o1", 500)))

	got, err := s.Filter(ctx, func(p *domain.Place) bool { return p.Price > 100 })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dear", got[0].Title)
}

func testUpdate(t *testing.T, s Store[*domain.Place]) {
	ctx := context.Background()
	p := place(t, "Loft", "o1", 100)
	require.NoError(t, s.Add(ctx, p))

	updated, err := s.Update(ctx, p.ID, func(p *domain.Place) error {
		p.Price = 150
		p.AddAmenity("a1")
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 150.0, updated.Price)
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt.Time))
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt.Time))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.Price)
	assert.Equal(t, []string{"a1"}, got.AmenityIDs)
	assert.Equal(t, 10.0, *got.Latitude)
}

func testUpdateMissing(t *testing.T, s Store[*domain.Place]) {
	called := false
	got, err := s.Update(context.Background(), "missing", func(*domain.Place) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, called)
}

func testUpdateMutatorError(t *testing.T, s Store[*domain.Place]) {
	ctx := context.Background()
	p := place(t, "Loft", "o1", 100)
	require.NoError(t, s.Add(ctx, p))

	_, err := s.Update(ctx, p.ID, func(p *domain.Place) error {
		return p.Apply(domain.PlacePatch{Price: ptr(-5.0)})
	})
	require.Error(t, err)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)
}

func testDelete(t *testing.T, s Store[*domain.Amenity]) {
	ctx := context.Background()
	a := amenity(t, "Wi-Fi")
	b := amenity(t, "Pool")
	require.NoError(t, s.Add(ctx, a))
	require.NoError(t, s.Add(ctx, b))

	require.NoError(t, s.Delete(ctx, a.ID))
	require.NoError(t, s.Delete(ctx, a.ID), "deleting twice is a no-op")
	require.NoError(t, s.Delete(ctx, "missing"))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func testByAttribute(t *testing.T, s Store[*domain.Place]) {
	ctx := context.Background()
	first := place(t, "One", "o1", 100)
	require.NoError(t, s.Add(ctx, first))
	require.NoError(t, s.Add(ctx, place(t, "Two", "o1", 100)))
	require.NoError(t, s.Add(ctx, place(t, "Three", "o2", 100)))

	got, err := s.GetByAttribute(ctx, "owner_id", "o1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	all, err := s.GetAllByAttribute(ctx, "owner_id", "o1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.GetByAttribute(ctx, "owner_id", "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)

	unknown, err := s.GetAllByAttribute(ctx, "no_such_attribute", "o1")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func testClear(t *testing.T, s Store[*domain.Amenity]) {
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, amenity(t, "Wi-Fi")))
	require.NoError(t, s.Clear(ctx))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testReadsAreCopies(t *testing.T, s Store[*domain.Place]) {
	ctx := context.Background()
	p := place(t, "Loft", "o1", 100)
	require.NoError(t, s.Add(ctx, p))
	p.Price = 1

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)

	got.Price = 2
	*got.Latitude = 0
	again, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Price)
	assert.Equal(t, 10.0, *again.Latitude)
}

func ptr[T any](v T) *T { return &v }
