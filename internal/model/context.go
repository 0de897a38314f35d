package model

import "context"

// ContextManager carries authenticated callers through request contexts.
type ContextManager interface {
	SetIdentityToContext(ctx context.Context, identity Identity) context.Context
	GetIdentityFromContext(ctx context.Context) (Identity, bool)
	SetPrincipalToContext(ctx context.Context, principal APIKeyPrincipal) context.Context
	GetPrincipalFromContext(ctx context.Context) (APIKeyPrincipal, bool)
}
