package domain

import (
	"fmt"
	"strings"

	"github.com/vbonduro/hbnb/internal/apperror"
)

const (
	nameRules  = "required,max=50"
	emailRules = "required,email"

	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

type User struct {
	Metadata
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

type UserInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserPatch carries the fields of a partial update. Nil fields are left
// untouched.
type UserPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
}

// NewUser validates in and returns a user whose password has been hashed.
// The plaintext is never stored.
func NewUser(in UserInput, hasher PasswordHasher) (*User, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}
	return &User{
		Metadata:     NewMetadata(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
	}, nil
}

// NormalizeEmail trims surrounding whitespace. Comparison stays
// case-sensitive.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Restricted lists the set fields only an administrator may change.
func (p UserPatch) Restricted() []string {
	var fields []string
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.Password != nil {
		fields = append(fields, "password")
	}
	if p.IsAdmin != nil {
		fields = append(fields, "is_admin")
	}
	return fields
}

// Validate checks every set field without modifying anything.
func (p UserPatch) Validate() error {
	if p.FirstName != nil {
		if err := validateField("first_name", *p.FirstName, nameRules); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := validateField("last_name", *p.LastName, nameRules); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := validateField("email", NormalizeEmail(*p.Email), emailRules); err != nil {
			return err
		}
	}
	if p.Password != nil {
		if err := validateField("password", *p.Password, "required"); err != nil {
			return err
		}
		if err := checkPasswordLength(*p.Password); err != nil {
			return err
		}
	}
	return nil
}

// checkPasswordLength counts bytes, not runes.
func checkPasswordLength(p string) error {
	if len(p) > MaxPasswordBytes {
		return apperror.NewValidation("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Apply validates p and then copies its set fields onto u. A new password is
// hashed before it is stored. On error u is unchanged.
func (u *User) Apply(p UserPatch, hasher PasswordHasher) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var hash string
	if p.Password != nil {
		h, err := hasher.Hash(*p.Password)
		if err != nil {
			return apperror.NewInternal("failed to hash password", err)
		}
		hash = h
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		u.PasswordHash = hash
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	return nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
func (u *User) VerifyPassword(plaintext string, hasher PasswordHasher) bool {
	return hasher.Verify(plaintext, u.PasswordHash)
}

func (u *User) Meta() *Metadata { return &u.Metadata }

func (u *User) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "first_name":
		return u.FirstName, true
	case "last_name":
		return u.LastName, true
	case "email":
		return u.Email, true
	case "is_admin":
		return u.IsAdmin, true
	default:
		return nil, false
	}
}

func (u *User) Clone() *User {
	cp := *u
	return &cp
}
