package service

import (
	"context"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/domain"
)

func (f *Facade) CreateAmenity(ctx context.Context, in domain.AmenityInput) (*domain.Amenity, error) {
	amenity, err := domain.NewAmenity(in)
	if err != nil {
		f.logger.Debug("create amenity rejected", "error", err)
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.amenities.Add(ctx, amenity); err != nil {
		return nil, apperror.NewInternal("failed to store amenity", err)
	}
	f.logger.Info("amenity created", "amenity_id", amenity.ID)
	return amenity, nil
}

func (f *Facade) GetAmenity(ctx context.Context, id string) (*domain.Amenity, error) {
	return f.getAmenity(ctx, id)
}

func (f *Facade) GetAllAmenities(ctx context.Context) ([]*domain.Amenity, error) {
	amenities, err := f.amenities.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to list amenities", err)
	}
	return amenities, nil
}

func (f *Facade) UpdateAmenity(ctx context.Context, id string, patch domain.AmenityPatch) (*domain.Amenity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	updated, err := f.amenities.Update(ctx, id, func(a *domain.Amenity) error { return a.Apply(patch) })
	if err != nil {
		return nil, wrapStoreErr("failed to update amenity", err)
	}
	if updated == nil {
		return nil, apperror.NewNotFound("amenity %s not found", id)
	}
	f.logger.Info("amenity updated", "amenity_id", id)
	return updated, nil
}

// DeleteAmenity removes the amenity and unlinks it from every place.
func (f *Facade) DeleteAmenity(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.getAmenity(ctx, id); err != nil {
		return err
	}
	linked, err := f.places.Filter(ctx, func(p *domain.Place) bool { return p.HasAmenity(id) })
	if err != nil {
		return apperror.NewInternal("failed to list places", err)
	}
	for _, p := range linked {
		_, err := f.places.Update(ctx, p.ID, func(p *domain.Place) error {
			p.RemoveAmenity(id)
			return nil
		})
		if err != nil {
			return apperror.NewInternal("failed to unlink amenity", err)
		}
	}
	if err := f.amenities.Delete(ctx, id); err != nil {
		return apperror.NewInternal("failed to delete amenity", err)
	}
	f.logger.Info("amenity deleted", "amenity_id", id, "unlinked_places", len(linked))
	return nil
}

func (f *Facade) getAmenity(ctx context.Context, id string) (*domain.Amenity, error) {
	a, err := f.amenities.Get(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to get amenity", err)
	}
	if a == nil {
		return nil, apperror.NewNotFound("amenity %s not found", id)
	}
	return a, nil
}
