package service

import (
	"context"
	"errors"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

// CreateUser validates in, hashes the password and stores the user. The
// email must not belong to any stored user, compared exactly.
func (f *Facade) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	// Hashing is slow, so it happens before the write lock is taken.
	user, err := domain.NewUser(in, f.hasher)
	if err != nil {
		f.logger.Debug("create user rejected", "error", err)
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkEmailFree(ctx, user.Email, ""); err != nil {
		return nil, err
	}
	if err := f.users.Add(ctx, user); err != nil {
		return nil, apperror.NewInternal("failed to store user", err)
	}
	f.logger.Info("user created", "user_id", user.ID, "is_admin", user.IsAdmin)
	return user, nil
}

func (f *Facade) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return f.getUser(ctx, id)
}

func (f *Facade) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := f.users.GetByAttribute(ctx, "email", domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.NewInternal("failed to look up user", err)
	}
	if u == nil {
		return nil, apperror.ErrUserNotFound.With("no user with email %s", email)
	}
	return u, nil
}

func (f *Facade) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := f.users.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to list users", err)
	}
	return users, nil
}

// UpdateUser applies patch to the user. Users may change their own names;
// email, password and the admin flag can only be changed by an admin.
func (f *Facade) UpdateUser(ctx context.Context, id string, patch domain.UserPatch, actor authz.Identity) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireSelfOrAdmin(actor, current.ID, "update this user"); err != nil {
		return nil, err
	}
	if restricted := patch.Restricted(); len(restricted) > 0 && !authz.IsAdmin(actor) {
		return nil, apperror.NewUnauthorized("only administrators may change %s", restricted[0])
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		if err := f.checkEmailFree(ctx, domain.NormalizeEmail(*patch.Email), id); err != nil {
			return nil, err
		}
	}

	updated, err := f.users.Update(ctx, id, func(u *domain.User) error {
		return u.Apply(patch, f.hasher)
	})
	if err != nil {
		return nil, wrapStoreErr("failed to update user", err)
	}
	if updated == nil {
		return nil, apperror.ErrUserNotFound.With("user %s not found", id)
	}
	f.logger.Info("user updated", "user_id", id, "actor_id", actor.ID)
	return updated, nil
}

// DeleteUser removes the user and every review they wrote. A user who still
// owns places cannot be deleted.
func (f *Facade) DeleteUser(ctx context.Context, id string, actor authz.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, err := f.getUser(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireSelfOrAdmin(actor, user.ID, "delete this user"); err != nil {
		return err
	}
	owned, err := f.places.GetAllByAttribute(ctx, "owner_id", id)
	if err != nil {
		return apperror.NewInternal("failed to list owned places", err)
	}
	if len(owned) > 0 {
		return apperror.NewConflict("user %s still owns %d places", id, len(owned))
	}
	if err := f.deleteReviewsBy(ctx, "user_id", id); err != nil {
		return err
	}
	if err := f.users.Delete(ctx, id); err != nil {
		return apperror.NewInternal("failed to delete user", err)
	}
	f.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}

// Authenticate returns the user whose email and password match.
func (f *Facade) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := f.users.GetByAttribute(ctx, "email", domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.NewInternal("failed to look up user", err)
	}
	if u == nil || !u.VerifyPassword(password, f.hasher) {
		f.logger.Debug("login rejected", "email", email)
		return nil, apperror.ErrInvalidLogin
	}
	return u, nil
}

func (f *Facade) getUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := f.users.Get(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to get user", err)
	}
	if u == nil {
		return nil, apperror.ErrUserNotFound.With("user %s not found", id)
	}
	return u, nil
}

// checkEmailFree fails with EmailInUse when a user other than exceptID has
// the given email.
func (f *Facade) checkEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := f.users.GetByAttribute(ctx, "email", email)
	if err != nil {
		return apperror.NewInternal("failed to check email", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperror.ErrEmailInUse
	}
	return nil
}

// wrapStoreErr passes facade errors raised by a mutator through and wraps
// anything else as internal.
func wrapStoreErr(msg string, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.NewInternal(msg, err)
}
