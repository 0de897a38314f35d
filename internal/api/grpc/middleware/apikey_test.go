package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcctx "github.com/CDevmina/Tapiro-sub000/internal/api/grpc/context"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

const submitMethod = "/tapiro.StoreOperations/SubmitUserData"

type mockKeyResolver struct {
	mock.Mock
}

func (m *mockKeyResolver) Resolve(ctx context.Context, presented, method, endpoint string) (model.APIKeyPrincipal, error) {
	args := m.Called(ctx, presented, method, endpoint)
	return args.Get(0).(model.APIKeyPrincipal), args.Error(1)
}

func withAPIKey(key string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(APIKeyHeader, key))
}

func TestAPIKey_HandleGRPC(t *testing.T) {
	t.Parallel()

	principal := model.APIKeyPrincipal{StoreID: uuid.New(), KeyID: uuid.New(), Prefix: "abcd1234"}

	tests := []struct {
		name      string
		ctx       context.Context
		presented string
		resolved  model.APIKeyPrincipal
		err       error
		wantCode  codes.Code
	}{
		{
			name:      "valid key",
			ctx:       withAPIKey("good"),
			presented: "good",
			resolved:  principal,
			wantCode:  codes.OK,
		},
		{
			name:      "missing key",
			ctx:       context.Background(),
			presented: "",
			err:       apierror.Unauthorized("API key is required"),
			wantCode:  codes.Unauthenticated,
		},
		{
			name:      "invalid key",
			ctx:       withAPIKey("bad"),
			presented: "bad",
			err:       apierror.Unauthorized("Invalid API key"),
			wantCode:  codes.Unauthenticated,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := grpcctx.NewManager()
			resolver := &mockKeyResolver{}
			resolver.On("Resolve", mock.Anything, tt.presented, "POST", submitMethod).Return(tt.resolved, tt.err)

			m := NewAPIKey(resolver, cm, testutil.MakeNoopLogger(), 10, 10, false)

			var got model.APIKeyPrincipal
			handler := func(ctx context.Context, req any) (any, error) {
				got, _ = cm.GetPrincipalFromContext(ctx)
				return "ok", nil
			}

			_, err := m.HandleGRPC(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: submitMethod}, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, principal, got)
			}
			resolver.AssertExpectations(t)
		})
	}
}

func TestAPIKey_RateLimit(t *testing.T) {
	t.Parallel()

	cm := grpcctx.NewManager()
	first := model.APIKeyPrincipal{StoreID: uuid.New(), KeyID: uuid.New(), Prefix: "aaaa1111"}
	second := model.APIKeyPrincipal{StoreID: first.StoreID, KeyID: uuid.New(), Prefix: "bbbb2222"}

	resolver := &mockKeyResolver{}
	resolver.On("Resolve", mock.Anything, "first", "POST", submitMethod).Return(first, nil)
	resolver.On("Resolve", mock.Anything, "second", "POST", submitMethod).Return(second, nil)

	// One token, refilled once per ~17 minutes.
	m := NewAPIKey(resolver, cm, testutil.MakeNoopLogger(), 0.001, 1, false)
	info := &grpc.UnaryServerInfo{FullMethod: submitMethod}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	_, err := m.HandleGRPC(withAPIKey("first"), nil, info, handler)
	require.NoError(t, err)

	_, err = m.HandleGRPC(withAPIKey("first"), nil, info, handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// Limits are per key.
	_, err = m.HandleGRPC(withAPIKey("second"), nil, info, handler)
	assert.NoError(t, err)
}

func TestAPIKey_Unlimited(t *testing.T) {
	t.Parallel()

	cm := grpcctx.NewManager()
	principal := model.APIKeyPrincipal{StoreID: uuid.New(), KeyID: uuid.New(), Prefix: "abcd1234"}
	resolver := &mockKeyResolver{}
	resolver.On("Resolve", mock.Anything, "k", "POST", submitMethod).Return(principal, nil)

	m := NewAPIKey(resolver, cm, testutil.MakeNoopLogger(), 0, 0, false)
	info := &grpc.UnaryServerInfo{FullMethod: submitMethod}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	for range 20 {
		_, err := m.HandleGRPC(withAPIKey("k"), nil, info, handler)
		require.NoError(t, err)
	}
}

func TestAPIKey_SweepsRefilledLimiters(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rps     float64
		wantLen int
	}{
		{
			name:    "refilled limiter is dropped",
			rps:     1,
			wantLen: 1,
		},
		{
			name:    "draining limiter is kept",
			rps:     0.001,
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := start
			m := NewAPIKey(&mockKeyResolver{}, grpcctx.NewManager(), testutil.MakeNoopLogger(), tt.rps, 1, false)
			m.now = func() time.Time { return clock }

			idle, active := uuid.New(), uuid.New()
			require.True(t, m.allow(idle))

			clock = start.Add(2 * limiterSweepInterval)
			require.True(t, m.allow(active))

			m.mu.Lock()
			defer m.mu.Unlock()
			assert.Len(t, m.limiters, tt.wantLen)
			assert.Contains(t, m.limiters, active)
		})
	}
}

func TestAPIKey_SweepKeepsLimitEnforced(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewAPIKey(&mockKeyResolver{}, grpcctx.NewManager(), testutil.MakeNoopLogger(), 0.001, 1, false)
	m.now = func() time.Time { return clock }

	keyID := uuid.New()
	require.True(t, m.allow(keyID))

	clock = clock.Add(2 * limiterSweepInterval)
	assert.False(t, m.allow(keyID))
}
