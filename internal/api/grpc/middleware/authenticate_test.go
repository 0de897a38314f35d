package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcctx "github.com/CDevmina/Tapiro-sub000/internal/api/grpc/context"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Identity), args.Error(1)
}

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	shopper := model.Identity{Subject: "auth0|user", Roles: []string{model.RoleUser}, Scopes: []string{"user:read"}}

	tests := []struct {
		name         string
		mdAuthHeader string
		wantToken    string
		identity     model.Identity
		authErr      error
		wantGRPCCode codes.Code
	}{
		{
			name:         "missing authorization header",
			wantToken:    "",
			authErr:      apierror.Unauthorized("Authorization token is required"),
			wantGRPCCode: codes.Unauthenticated,
		},
		{
			name:         "wrong scheme",
			mdAuthHeader: "Basic dXNlcjpwYXNz",
			wantToken:    "",
			authErr:      apierror.Unauthorized("Authorization token is required"),
			wantGRPCCode: codes.Unauthenticated,
		},
		{
			name:         "invalid token",
			mdAuthHeader: "Bearer invalid",
			wantToken:    "invalid",
			authErr:      apierror.Unauthorized("Invalid token"),
			wantGRPCCode: codes.Unauthenticated,
		},
		{
			name:         "valid token",
			mdAuthHeader: "Bearer token",
			wantToken:    "token",
			identity:     shopper,
			wantGRPCCode: codes.OK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := grpcctx.NewManager()
			authenticator := &mockAuthenticator{}
			authenticator.On("Authenticate", mock.Anything, tt.wantToken).Return(tt.identity, tt.authErr)

			m := NewAuthenticate(authenticator, cm, testutil.MakeNoopLogger(), false)

			ctx := context.Background()
			if tt.mdAuthHeader != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.mdAuthHeader))
			}

			newCtx, err := m.AuthFunc(ctx)

			if tt.wantGRPCCode != codes.OK {
				st, ok := status.FromError(err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantGRPCCode, st.Code())
				assert.Nil(t, newCtx)
				return
			}

			assert.NoError(t, err)
			got, ok := cm.GetIdentityFromContext(newCtx)
			assert.True(t, ok)
			assert.Equal(t, shopper, got)
			authenticator.AssertExpectations(t)
		})
	}
}
