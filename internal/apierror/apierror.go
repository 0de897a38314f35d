// Package apierror defines the error taxonomy surfaced to API callers.
//
// Every APIError carries a numeric code, the gRPC status code it maps to and a
// human-readable message. The wrapped cause, if any, is kept for logging and is
// never shown to callers outside development mode.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// APIError is a routine, expected failure with a caller-facing message.
type APIError struct {
	Code     int
	GRPCCode codes.Code
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another APIError by numeric code, so errors.Is(err, apierror.ErrForbidden) works.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// WithCause returns a copy of e that wraps cause.
func (e *APIError) WithCause(cause error) *APIError {
	cp := *e
	cp.Err = cause
	return &cp
}

// Sentinels for errors.Is comparisons by category.
var (
	ErrBadRequest   = &APIError{Code: http.StatusBadRequest}
	ErrUnauthorized = &APIError{Code: http.StatusUnauthorized}
	ErrForbidden    = &APIError{Code: http.StatusForbidden}
	ErrNotFound     = &APIError{Code: http.StatusNotFound}
	ErrConflict     = &APIError{Code: http.StatusConflict}
	ErrInternal     = &APIError{Code: http.StatusInternalServerError}
	ErrTooMany      = &APIError{Code: http.StatusTooManyRequests}
	ErrUnavailable  = &APIError{Code: http.StatusServiceUnavailable}
)

func newError(code int, grpcCode codes.Code, format string, args ...any) *APIError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &APIError{Code: code, GRPCCode: grpcCode, Message: msg}
}

// BadRequest reports malformed or invalid input.
func BadRequest(format string, args ...any) *APIError {
	return newError(http.StatusBadRequest, codes.InvalidArgument, format, args...)
}

// Unauthorized reports a missing, invalid or revoked credential.
func Unauthorized(format string, args ...any) *APIError {
	return newError(http.StatusUnauthorized, codes.Unauthenticated, format, args...)
}

// Forbidden reports a valid identity that is not allowed to proceed.
func Forbidden(format string, args ...any) *APIError {
	return newError(http.StatusForbidden, codes.PermissionDenied, format, args...)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) *APIError {
	return newError(http.StatusNotFound, codes.NotFound, format, args...)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *APIError {
	return newError(http.StatusConflict, codes.AlreadyExists, format, args...)
}

// TooManyRequests reports a caller over its request budget.
func TooManyRequests(format string, args ...any) *APIError {
	return newError(http.StatusTooManyRequests, codes.ResourceExhausted, format, args...)
}

// Unavailable reports a dependency that could not be reached.
func Unavailable(format string, args ...any) *APIError {
	return newError(http.StatusServiceUnavailable, codes.Unavailable, format, args...)
}

// Internal reports an unexpected failure. The cause is kept for logs.
func Internal(cause error) *APIError {
	e := newError(http.StatusInternalServerError, codes.Internal, "Internal server error")
	e.Err = cause
	return e
}

// From extracts an APIError from err, converting anything else into Internal.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
