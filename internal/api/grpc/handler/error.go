package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/grpcerror"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// base holds what every handler needs to find the caller and report errors.
type base struct {
	contextManager model.ContextManager
	logger         *logger.Logger
	devMode        bool
}

func (b base) handleError(ctx context.Context, err error) error {
	return grpcerror.ToStatus(ctx, err, b.devMode)
}

func (b base) identity(ctx context.Context) (model.Identity, error) {
	identity, ok := b.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return model.Identity{}, b.handleError(ctx, apierror.Unauthorized("Authentication required"))
	}
	return identity, nil
}

func (b base) principal(ctx context.Context) (model.APIKeyPrincipal, error) {
	principal, ok := b.contextManager.GetPrincipalFromContext(ctx)
	if !ok {
		return model.APIKeyPrincipal{}, b.handleError(ctx, apierror.Unauthorized("API key is required"))
	}
	return principal, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apierror.BadRequest("Invalid %s", field)
	}
	return id, nil
}
