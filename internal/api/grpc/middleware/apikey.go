package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/grpcerror"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/metrics"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// APIKeyHeader is the metadata key stores send their API key in.
const APIKeyHeader = "x-api-key"

// rpcVerb is recorded as the usage method of every gRPC call.
const rpcVerb = "POST"

// limiterSweepInterval is how often refilled limiters are dropped from memory.
const limiterSweepInterval = time.Minute

// KeyResolver resolves a presented API key to the store it belongs to.
type KeyResolver interface {
	Resolve(ctx context.Context, presented, method, endpoint string) (model.APIKeyPrincipal, error)
}

// APIKey authenticates stores by API key and rate limits each key.
type APIKey struct {
	resolver       KeyResolver
	contextManager model.ContextManager
	logger         *logger.Logger
	devMode        bool

	limit rate.Limit
	burst int

	now       func() time.Time
	mu        sync.Mutex
	limiters  map[uuid.UUID]*rate.Limiter
	lastSweep time.Time
}

// NewAPIKey creates a new APIKey middleware. A non-positive rps disables rate limiting.
func NewAPIKey(
	resolver KeyResolver,
	contextManager model.ContextManager,
	logger *logger.Logger,
	rps float64,
	burst int,
	devMode bool,
) *APIKey {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &APIKey{
		resolver:       resolver,
		contextManager: contextManager,
		logger:         logger,
		devMode:        devMode,
		limit:          limit,
		burst:          burst,
		now:            time.Now,
		limiters:       make(map[uuid.UUID]*rate.Limiter),
	}
}

// HandleGRPC resolves the x-api-key header and attaches the principal to context.
func (m *APIKey) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var presented string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(APIKeyHeader); len(values) > 0 {
			presented = values[0]
		}
	}

	principal, err := m.resolver.Resolve(ctx, presented, rpcVerb, info.FullMethod)
	if err != nil {
		return nil, grpcerror.ToStatus(ctx, err, m.devMode)
	}

	if !m.allow(principal.KeyID) {
		metrics.RateLimited.Inc()
		m.logger.Warn("API key middleware: rate limit exceeded",
			"store_id", principal.StoreID,
			"prefix", principal.Prefix,
			"method", info.FullMethod)
		return nil, grpcerror.ToStatus(ctx, apierror.TooManyRequests("Rate limit exceeded"), m.devMode)
	}

	return handler(m.contextManager.SetPrincipalToContext(ctx, principal), req)
}

func (m *APIKey) allow(keyID uuid.UUID) bool {
	if m.limit == rate.Inf {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= limiterSweepInterval {
		m.sweep(now)
	}

	l, ok := m.limiters[keyID]
	if !ok {
		l = rate.NewLimiter(m.limit, m.burst)
		m.limiters[keyID] = l
	}
	return l.AllowN(now, 1)
}

// sweep drops limiters whose bucket has refilled. A full bucket is
// indistinguishable from a fresh limiter. Callers hold m.mu.
func (m *APIKey) sweep(now time.Time) {
	for keyID, l := range m.limiters {
		if l.TokensAt(now) >= float64(m.burst) {
			delete(m.limiters, keyID)
		}
	}
	m.lastSweep = now
}
