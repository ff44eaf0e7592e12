package service

import (
	"context"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

// CreateReview stores a review of a place. UserID defaults to the actor;
// reviewing on behalf of someone else requires admin rights. Owners cannot
// review their own place and a user reviews a place at most once.
func (f *Facade) CreateReview(ctx context.Context, in domain.ReviewInput, actor authz.Identity) (*domain.Review, error) {
	if in.UserID == "" {
		in.UserID = actor.ID
	}
	if err := authz.RequireSelfOrAdmin(actor, in.UserID, "review on behalf of another user"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.getUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	place, err := f.getPlace(ctx, in.PlaceID)
	if err != nil {
		return nil, err
	}
	if place.OwnerID == in.UserID {
		return nil, apperror.ErrSelfReview
	}
	existing, err := f.findReview(ctx, in.UserID, in.PlaceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateReview
	}

	review, err := domain.NewReview(in)
	if err != nil {
		f.logger.Debug("create review rejected", "error", err)
		return nil, err
	}
	if err := f.reviews.Add(ctx, review); err != nil {
		return nil, apperror.NewInternal("failed to store review", err)
	}
	f.logger.Info("review created", "review_id", review.ID, "place_id", review.PlaceID, "user_id", review.UserID)
	return review, nil
}

func (f *Facade) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return f.getReview(ctx, id)
}

func (f *Facade) GetAllReviews(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := f.reviews.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to list reviews", err)
	}
	return reviews, nil
}

func (f *Facade) GetReviewsByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	if _, err := f.getPlace(ctx, placeID); err != nil {
		return nil, err
	}
	reviews, err := f.reviews.GetAllByAttribute(ctx, "place_id", placeID)
	if err != nil {
		return nil, apperror.NewInternal("failed to list reviews", err)
	}
	return reviews, nil
}

// GetUserReviewForPlace returns the single review userID wrote for placeID.
func (f *Facade) GetUserReviewForPlace(ctx context.Context, userID, placeID string) (*domain.Review, error) {
	r, err := f.findReview(ctx, userID, placeID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NewNotFound("user %s has not reviewed place %s", userID, placeID)
	}
	return r, nil
}

func (f *Facade) UpdateReview(ctx context.Context, id string, patch domain.ReviewPatch, actor authz.Identity) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.UserID, "update this review"); err != nil {
		return nil, err
	}
	updated, err := f.reviews.Update(ctx, id, func(r *domain.Review) error { return r.Apply(patch) })
	if err != nil {
		return nil, wrapStoreErr("failed to update review", err)
	}
	if updated == nil {
		return nil, apperror.NewNotFound("review %s not found", id)
	}
	f.logger.Info("review updated", "review_id", id, "actor_id", actor.ID)
	return updated, nil
}

func (f *Facade) DeleteReview(ctx context.Context, id string, actor authz.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getReview(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwnerOrAdmin(actor, current.UserID, "delete this review"); err != nil {
		return err
	}
	if err := f.reviews.Delete(ctx, id); err != nil {
		return apperror.NewInternal("failed to delete review", err)
	}
	f.logger.Info("review deleted", "review_id", id, "actor_id", actor.ID)
	return nil
}

func (f *Facade) getReview(ctx context.Context, id string) (*domain.Review, error) {
	r, err := f.reviews.Get(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to get review", err)
	}
	if r == nil {
		return nil, apperror.NewNotFound("review %s not found", id)
	}
	return r, nil
}

func (f *Facade) findReview(ctx context.Context, userID, placeID string) (*domain.Review, error) {
	byPlace, err := f.reviews.GetAllByAttribute(ctx, "place_id", placeID)
	if err != nil {
		return nil, apperror.NewInternal("failed to list reviews", err)
	}
	for _, r := range byPlace {
		if r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

// deleteReviewsBy removes every review whose attribute equals value.
func (f *Facade) deleteReviewsBy(ctx context.Context, attribute, value string) error {
	reviews, err := f.reviews.GetAllByAttribute(ctx, attribute, value)
	if err != nil {
		return apperror.NewInternal("failed to list reviews", err)
	}
	for _, r := range reviews {
		if err := f.reviews.Delete(ctx, r.ID); err != nil {
			return apperror.NewInternal("failed to delete review", err)
		}
	}
	if len(reviews) > 0 {
		f.logger.Info("reviews removed", attribute, value, "count", len(reviews))
	}
	return nil
}
