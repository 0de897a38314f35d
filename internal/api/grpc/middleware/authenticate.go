package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/grpcerror"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// Authenticator resolves a bearer token to an identity with its scopes.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// Authenticate validates bearer tokens and injects the identity into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
	devMode        bool
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger, devMode bool) *Authenticate {
	return &Authenticate{
		authenticator:  authenticator,
		contextManager: contextManager,
		logger:         logger,
		devMode:        devMode,
	}
}

// AuthFunc parses the authorization header, resolves the token and returns a
// context carrying the identity.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	identity, err := m.authenticator.Authenticate(ctx, bearerToken(ctx))
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected", "error", err)
		return nil, grpcerror.ToStatus(ctx, err, m.devMode)
	}

	return m.contextManager.SetIdentityToContext(ctx, identity), nil
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	headers := md.Get("authorization")
	if len(headers) == 0 {
		return ""
	}

	token, found := strings.CutPrefix(headers[0], "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
