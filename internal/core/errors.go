package core

import (
	"errors"
	"net/http"
)

var (
	// ErrNotLoggedIn is returned when no usable session is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired is returned when the backend rejects the session
	// with 401 or the token's own expiry has passed. The stored session has
	// already been cleared when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrSelfDependency is returned when a task is made to depend on itself.
	ErrSelfDependency = errors.New("a task cannot depend on itself")
)

// statusCoder is implemented by backend errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// IsUnauthorized reports whether err (or anything it wraps) is a backend
// response with status 401.
func IsUnauthorized(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus() == http.StatusUnauthorized
	}
	return false
}

// UserMessage renders err the way it should be shown to a person:
// validation errors and backend messages verbatim, session problems as a
// prompt to log in again.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionExpired):
		return "Session expired. Please log in again."
	case errors.Is(err, ErrNotLoggedIn):
		return "Please log in to continue."
	}
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe.Error()
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
