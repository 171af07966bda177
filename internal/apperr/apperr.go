// Package apperr holds the error taxonomy shared by the services, the HTTP
// layer and the API client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means no session was present where one is required.
	ErrUnauthenticated = errors.New("you must be signed in")
	// ErrUnauthorized means a session exists but lacks ownership or admin rights.
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotFound means the target row is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")
	// ErrBackend means the database call itself failed.
	ErrBackend = errors.New("backend error")
)

// Error attaches a user-facing message to one of the sentinel kinds.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a custom message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Backend wraps a collaborator failure. The cause is kept for logs but never
// shown to users.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrBackend, Msg: op, Err: err}
}

// Status maps an error to the HTTP status the API answers with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of Status, used by the API client.
func FromStatus(status int, msg string) error {
	var kind error
	switch status {
	case http.StatusUnauthorized:
		kind = ErrUnauthenticated
	case http.StatusForbidden:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ErrValidation
	default:
		kind = ErrBackend
	}
	if msg == "" {
		msg = kind.Error()
	}
	return &Error{Kind: kind, Msg: msg}
}

// Message returns the text safe to show to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == ErrBackend {
			return "Something went wrong, please try again"
		}
		return e.Msg
	}
	if errors.Is(err, ErrBackend) {
		return "Something went wrong, please try again"
	}
	return err.Error()
}
