package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcctx "github.com/CDevmina/Tapiro-sub000/internal/api/grpc/context"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

func TestAuthorize_HandleGRPC(t *testing.T) {
	t.Parallel()

	scopes := map[string]string{
		"/tapiro.Users/GetProfile":    "user:read",
		"/tapiro.Stores/CreateAPIKey": "store:write",
	}

	tests := []struct {
		name     string
		method   string
		identity *model.Identity
		wantCode codes.Code
	}{
		{
			name:     "granted",
			method:   "/tapiro.Users/GetProfile",
			identity: &model.Identity{Subject: "u", Scopes: []string{"user:read", "user:write"}},
			wantCode: codes.OK,
		},
		{
			name:     "user calling store method",
			method:   "/tapiro.Stores/CreateAPIKey",
			identity: &model.Identity{Subject: "u", Scopes: []string{"user:read", "user:write"}},
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "unknown method is denied",
			method:   "/tapiro.Users/Unknown",
			identity: &model.Identity{Subject: "u", Scopes: []string{"user:read"}},
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "no identity",
			method:   "/tapiro.Users/GetProfile",
			wantCode: codes.Unauthenticated,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := grpcctx.NewManager()
			m := NewAuthorize(scopes, cm, testutil.MakeNoopLogger(), false)

			ctx := context.Background()
			if tt.identity != nil {
				ctx = cm.SetIdentityToContext(ctx, *tt.identity)
			}

			called := false
			handler := func(ctx context.Context, req any) (any, error) {
				called = true
				return "ok", nil
			}

			_, err := m.HandleGRPC(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
			assert.Equal(t, tt.wantCode == codes.OK, called)
		})
	}
}
