package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

type identityKey struct{}

type principalKey struct{}

// Manager stores authenticated callers on request contexts.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying the bearer identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the bearer identity stored on ctx.
// An identity without a subject is treated as missing.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok || identity.Subject == "" {
		return model.Identity{}, false
	}
	return identity, true
}

// SetPrincipalToContext returns a copy of ctx carrying the API key principal.
func (m *Manager) SetPrincipalToContext(ctx context.Context, principal model.APIKeyPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipalFromContext returns the API key principal stored on ctx.
func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.APIKeyPrincipal, bool) {
	principal, ok := ctx.Value(principalKey{}).(model.APIKeyPrincipal)
	if !ok || principal.StoreID == uuid.Nil {
		return model.APIKeyPrincipal{}, false
	}
	return principal, true
}
