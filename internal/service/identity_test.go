package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

func TestIdentity_Authenticate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asserted := model.Identity{
		Subject:   "auth0|user",
		Email:     "shopper@example.com",
		Roles:     []string{model.RoleUser},
		ExpiresAt: now.Add(time.Hour),
	}

	t.Run("resolves once and caches", func(t *testing.T) {
		verifier := &MockVerifier{}
		scopes := &MockScopeResolver{}
		verifier.On("Verify", mock.Anything, "token-1").Return(asserted, nil).Once()
		scopes.On("Scopes", []string{model.RoleUser}).Return([]string{"user:read", "user:write"}, nil).Once()

		svc := NewIdentity(verifier, scopes, testutil.MakeCache(t), testutil.MakeNoopLogger())
		svc.now = func() time.Time { return now }

		for i := 0; i < 2; i++ {
			identity, err := svc.Authenticate(context.Background(), "token-1")
			require.NoError(t, err)
			assert.Equal(t, "auth0|user", identity.Subject)
			assert.Equal(t, []string{"user:read", "user:write"}, identity.Scopes)
		}

		verifier.AssertExpectations(t)
		scopes.AssertExpectations(t)
	})

	t.Run("cached identity past expiry is verified again", func(t *testing.T) {
		verifier := &MockVerifier{}
		scopes := &MockScopeResolver{}
		verifier.On("Verify", mock.Anything, "token-2").Return(asserted, nil).Once()
		verifier.On("Verify", mock.Anything, "token-2").Return(model.Identity{}, model.ErrTokenExpired).Once()
		scopes.On("Scopes", mock.Anything).Return([]string{"user:read"}, nil)

		svc := NewIdentity(verifier, scopes, testutil.MakeCache(t), testutil.MakeNoopLogger())
		svc.now = func() time.Time { return now }

		_, err := svc.Authenticate(context.Background(), "token-2")
		require.NoError(t, err)

		svc.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = svc.Authenticate(context.Background(), "token-2")
		assertAPIError(t, err, 401, "Token expired")

		verifier.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		token   string
		err     error
		wantMsg string
		code    int
	}{
		{name: "missing token", token: "", wantMsg: "Authorization token is required", code: 401},
		{name: "invalid token", token: "bad", err: fmt.Errorf("%w: signature", model.ErrTokenInvalid), wantMsg: "Invalid token", code: 401},
		{name: "expired token", token: "old", err: model.ErrTokenExpired, wantMsg: "Token expired", code: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &MockVerifier{}
			if tt.token != "" {
				verifier.On("Verify", mock.Anything, tt.token).Return(model.Identity{}, tt.err)
			}

			svc := NewIdentity(verifier, &MockScopeResolver{}, testutil.MakeCache(t), testutil.MakeNoopLogger())

			_, err := svc.Authenticate(context.Background(), tt.token)
			assertAPIError(t, err, tt.code, tt.wantMsg)

			verifier.AssertExpectations(t)
		})
	}
}

func TestIdentity_TTLNeverOutlivesToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := &Identity{}

	assert.Equal(t, 10*time.Minute, svc.ttl(model.Identity{ExpiresAt: now.Add(10 * time.Minute)}, now))
	assert.Equal(t, time.Hour, svc.ttl(model.Identity{ExpiresAt: now.Add(48 * time.Hour)}, now))
	assert.Equal(t, time.Second, svc.ttl(model.Identity{ExpiresAt: now.Add(-time.Minute)}, now))
	assert.Equal(t, time.Hour, svc.ttl(model.Identity{}, now))
}
