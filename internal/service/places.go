package service

import (
	"context"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

// CreatePlace stores a new place. OwnerID defaults to the actor; listing a
// place for someone else requires admin rights. The owner and every amenity
// must exist.
func (f *Facade) CreatePlace(ctx context.Context, in domain.PlaceInput, actor authz.Identity) (*domain.Place, error) {
	if in.OwnerID == "" {
		in.OwnerID = actor.ID
	}
	if err := authz.RequireSelfOrAdmin(actor, in.OwnerID, "create a place for another user"); err != nil {
		return nil, err
	}
	place, err := domain.NewPlace(in)
	if err != nil {
		f.logger.Debug("create place rejected", "error", err)
		return nil, err
	}
	if err := domain.CheckListing(&in.Title, in.Description); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	owner, err := f.users.Get(ctx, place.OwnerID)
	if err != nil {
		return nil, apperror.NewInternal("failed to get owner", err)
	}
	if owner == nil {
		return nil, apperror.ErrOwnerNotFound.With("owner %s not found", place.OwnerID)
	}
	for _, id := range place.AmenityIDs {
		if _, err := f.getAmenity(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := f.places.Add(ctx, place); err != nil {
		return nil, apperror.NewInternal("failed to store place", err)
	}
	f.logger.Info("place created", "place_id", place.ID, "owner_id", place.OwnerID)
	return place, nil
}

func (f *Facade) GetPlace(ctx context.Context, id string) (*domain.Place, error) {
	return f.getPlace(ctx, id)
}

func (f *Facade) GetAllPlaces(ctx context.Context) ([]*domain.Place, error) {
	places, err := f.places.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to list places", err)
	}
	return places, nil
}

func (f *Facade) GetPlacesByOwner(ctx context.Context, ownerID string) ([]*domain.Place, error) {
	if _, err := f.getUser(ctx, ownerID); err != nil {
		return nil, err
	}
	places, err := f.places.GetAllByAttribute(ctx, "owner_id", ownerID)
	if err != nil {
		return nil, apperror.NewInternal("failed to list places", err)
	}
	return places, nil
}

// GetPlaceDetails resolves the place's owner, amenities and reviews.
// Amenity ids that no longer resolve are skipped.
func (f *Facade) GetPlaceDetails(ctx context.Context, id string) (*domain.PlaceDetails, error) {
	place, err := f.getPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := f.users.Get(ctx, place.OwnerID)
	if err != nil {
		return nil, apperror.NewInternal("failed to get owner", err)
	}
	details := &domain.PlaceDetails{
		Place:     place,
		Owner:     owner,
		Amenities: make([]*domain.Amenity, 0, len(place.AmenityIDs)),
	}
	for _, aid := range place.AmenityIDs {
		a, err := f.amenities.Get(ctx, aid)
		if err != nil {
			return nil, apperror.NewInternal("failed to get amenity", err)
		}
		if a != nil {
			details.Amenities = append(details.Amenities, a)
		}
	}
	details.Reviews, err = f.reviews.GetAllByAttribute(ctx, "place_id", id)
	if err != nil {
		return nil, apperror.NewInternal("failed to list reviews", err)
	}
	return details, nil
}

// UpdatePlace applies patch on behalf of the owner or an admin. A failed
// validation leaves the place unchanged.
func (f *Facade) UpdatePlace(ctx context.Context, id string, patch domain.PlacePatch, actor authz.Identity) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.OwnerID, "update this place"); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := domain.CheckListing(patch.Title, patch.Description); err != nil {
		return nil, err
	}
	return f.updatePlace(ctx, id, actor, func(p *domain.Place) error { return p.Apply(patch) })
}

// DeletePlace removes the place together with its reviews.
func (f *Facade) DeletePlace(ctx context.Context, id string, actor authz.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getPlace(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.OwnerID, "delete this place"); err != nil {
		return err
	}
	if err := f.deleteReviewsBy(ctx, "place_id", id); err != nil {
		return err
	}
	if err := f.places.Delete(ctx, id); err != nil {
		return apperror.NewInternal("failed to delete place", err)
	}
	f.logger.Info("place deleted", "place_id", id, "actor_id", actor.ID)
	return nil
}

// AddAmenityToPlace links an existing amenity to the place. Linking twice
// is a no-op.
func (f *Facade) AddAmenityToPlace(ctx context.Context, placeID, amenityID string, actor authz.Identity) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.OwnerID, "change this place"); err != nil {
		return nil, err
	}
	if _, err := f.getAmenity(ctx, amenityID); err != nil {
		return nil, err
	}
	if current.HasAmenity(amenityID) {
		return current, nil
	}
	return f.updatePlace(ctx, placeID, actor, func(p *domain.Place) error {
		p.AddAmenity(amenityID)
		return nil
	})
}

func (f *Facade) RemoveAmenityFromPlace(ctx context.Context, placeID, amenityID string, actor authz.Identity) (*domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.OwnerID, "change this place"); err != nil {
		return nil, err
	}
	if !current.HasAmenity(amenityID) {
		return nil, apperror.NewNotFound("amenity %s is not linked to place %s", amenityID, placeID)
	}
	return f.updatePlace(ctx, placeID, actor, func(p *domain.Place) error {
		p.RemoveAmenity(amenityID)
		return nil
	})
}

func (f *Facade) updatePlace(ctx context.Context, id string, actor authz.Identity, mutate func(*domain.Place) error) (*domain.Place, error) {
	updated, err := f.places.Update(ctx, id, mutate)
	if err != nil {
		return nil, wrapStoreErr("failed to update place", err)
	}
	if updated == nil {
		return nil, apperror.ErrPlaceNotFound.With("place %s not found", id)
	}
	f.logger.Info("place updated", "place_id", id, "actor_id", actor.ID)
	return updated, nil
}

func (f *Facade) getPlace(ctx context.Context, id string) (*domain.Place, error) {
	p, err := f.places.Get(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to get place", err)
	}
	if p == nil {
		return nil, apperror.ErrPlaceNotFound.With("place %s not found", id)
	}
	return p, nil
}
