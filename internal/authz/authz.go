// Package authz holds the ownership and admin checks applied to every
// mutating facade operation. It never derives identity itself; callers pass
// the acting Identity in.
package authz

import (
	"github.com/vbonduro/hbnb/internal/apperror"
)

// Identity is the caller acting on a facade operation.
type Identity struct {
	ID      string
	IsAdmin bool
}

func IsAdmin(id Identity) bool {
	return id.IsAdmin
}

// IsOwner reports whether id matches the resource's owner or author id.
func IsOwner(id Identity, ownerID string) bool {
	return id.ID != "" && id.ID == ownerID
}

// RequireOwnerOrAdmin allows admins and the resource owner.
func RequireOwnerOrAdmin(id Identity, ownerID, action string) error {
	if IsAdmin(id) || IsOwner(id, ownerID) {
		return nil
	}
	return apperror.NewUnauthorized("not allowed to %s", action)
}

// RequireSelfOrAdmin allows admins and the user identified by userID.
func RequireSelfOrAdmin(id Identity, userID, action string) error {
	return RequireOwnerOrAdmin(id, userID, action)
}

func RequireAdmin(id Identity, action string) error {
	if IsAdmin(id) {
		return nil
	}
	return apperror.NewUnauthorized("admin privileges required to %s", action)
}
