package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so the HTTP boundary can map it to a
// status code without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindConflict
	KindAuthentication
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication_failed"
	case KindAuthorization:
		return "authorization_denied"
	default:
		return "internal"
	}
}

// Error is the single error type returned by use-cases and domain invariants.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error      { return newf(KindNotFound, format, args...) }
func BadRequest(format string, args ...any) *Error    { return newf(KindBadRequest, format, args...) }
func Conflict(format string, args ...any) *Error      { return newf(KindConflict, format, args...) }
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindAuthentication, format, args...)
}
func Forbidden(format string, args ...any) *Error { return newf(KindAuthorization, format, args...) }
func Internal(msg string, err error) *Error       { return &Error{Kind: KindInternal, Message: msg, Err: err} }

// KindOf extracts the kind from any error; wrapped non-apperr errors report
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error to the HTTP status the boundary should emit.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
