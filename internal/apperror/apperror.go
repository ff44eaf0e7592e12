// Package apperror defines the error values returned by every facade
// operation. Each error carries a coarse Kind for transport mapping and an
// optional Code for callers that need to tell, say, a duplicate review from
// an email collision.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is the single result-error type of the facade.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by Code, so errors.Is(err, ErrSelfReview) holds
// for any error built from that sentinel regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels. Use With to attach a message or field while keeping the code.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Code: "user_not_found", Message: "user not found"}
	ErrPlaceNotFound   = &Error{Kind: KindNotFound, Code: "place_not_found", Message: "place not found"}
	ErrOwnerNotFound   = &Error{Kind: KindNotFound, Code: "owner_not_found", Message: "owner not found"}
	ErrEmailInUse      = &Error{Kind: KindConflict, Code: "email_in_use", Field: "email", Message: "email already in use"}
	ErrDuplicateReview = &Error{Kind: KindConflict, Code: "duplicate_review", Message: "user has already reviewed this place"}
	ErrSelfReview      = &Error{Kind: KindUnauthorized, Code: "self_review", Message: "owners cannot review their own place"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: "unauthorized action"}
	ErrInvalidLogin    = &Error{Kind: KindUnauthorized, Code: "invalid_credentials", Message: "invalid credentials"}
)

// With returns a copy of the sentinel carrying a more specific message.
func (e *Error) With(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func NewValidation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Field: field, Message: message}
}

func NewNotFound(format string, args ...any) *Error {
	return ErrNotFound.With(format, args...)
}

func NewUnauthorized(format string, args ...any) *Error {
	return ErrUnauthorized.With(format, args...)
}

func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: fmt.Sprintf(format, args...)}
}

func NewInternal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: message, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// From extracts the *Error from err's chain, wrapping anything else as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return NewInternal("internal error", err)
}
