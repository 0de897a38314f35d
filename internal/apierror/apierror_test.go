package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		code     int
		grpcCode codes.Code
		message  string
		sentinel error
	}{
		{"bad request", BadRequest("Invalid data type: %s", "click"), 400, codes.InvalidArgument, "Invalid data type: click", ErrBadRequest},
		{"unauthorized", Unauthorized("Invalid API key"), 401, codes.Unauthenticated, "Invalid API key", ErrUnauthorized},
		{"forbidden", Forbidden("No consent"), 403, codes.PermissionDenied, "No consent", ErrForbidden},
		{"not found", NotFound("Store not found"), 404, codes.NotFound, "Store not found", ErrNotFound},
		{"conflict", Conflict("Username already taken"), 409, codes.AlreadyExists, "Username already taken", ErrConflict},
		{"too many requests", TooManyRequests("Rate limit exceeded"), 429, codes.ResourceExhausted, "Rate limit exceeded", ErrTooMany},
		{"unavailable", Unavailable("Taxonomy service unavailable"), 503, codes.Unavailable, "Taxonomy service unavailable", ErrUnavailable},
		{"internal", Internal(errors.New("db down")), 500, codes.Internal, "Internal server error", ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.grpcCode, tt.err.GRPCCode)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestAPIError_MessageWithPercentAndNoArgs(t *testing.T) {
	err := BadRequest("score must be within 0-100%")
	assert.Equal(t, "score must be within 0-100%", err.Message)
}

func TestAPIError_Wrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unavailable("Taxonomy service unavailable").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Taxonomy service unavailable: connection reset", err.Error())

	wrapped := fmt.Errorf("validate preferences: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnavailable)
	assert.NotErrorIs(t, wrapped, ErrBadRequest)
}

func TestFrom(t *testing.T) {
	forbidden := Forbidden("nope")
	assert.Same(t, forbidden, From(fmt.Errorf("wrapped: %w", forbidden)))

	plain := errors.New("boom")
	got := From(plain)
	assert.Equal(t, 500, got.Code)
	assert.ErrorIs(t, got, plain)
}
