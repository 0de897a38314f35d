package middleware

import (
	"context"

	"google.golang.org/grpc"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/grpcerror"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// Authorize checks that the authenticated identity holds the scope a method
// requires. Methods missing from the scope table are denied.
type Authorize struct {
	scopes         map[string]string
	contextManager model.ContextManager
	logger         *logger.Logger
	devMode        bool
}

// NewAuthorize creates a new Authorize middleware for the given full method to scope table.
func NewAuthorize(scopes map[string]string, contextManager model.ContextManager, logger *logger.Logger, devMode bool) *Authorize {
	return &Authorize{
		scopes:         scopes,
		contextManager: contextManager,
		logger:         logger,
		devMode:        devMode,
	}
}

// HandleGRPC rejects calls whose identity lacks the required scope.
func (m *Authorize) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	identity, ok := m.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return nil, grpcerror.ToStatus(ctx, apierror.Unauthorized("Authentication required"), m.devMode)
	}

	scope, ok := m.scopes[info.FullMethod]
	if !ok || !identity.HasScope(scope) {
		m.logger.Warn("Authorize middleware: insufficient scope",
			"method", info.FullMethod,
			"sub", identity.Subject,
			"required", scope)
		return nil, grpcerror.ToStatus(ctx, apierror.Forbidden("Insufficient scope"), m.devMode)
	}

	return handler(ctx, req)
}
