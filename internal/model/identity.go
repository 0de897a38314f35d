package model

import (
	"context"
	"slices"
	"time"
)

// Role names carried in identity-provider tokens.
const (
	RoleUser  = "user"
	RoleStore = "store"
)

// Identity is the upstream fact an identity provider asserts about a bearer.
// Scopes are derived from Roles by the authorizer and never come from the token.
type Identity struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
	Scopes    []string  `json:"-"`
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// HasScope reports whether the identity was granted scope.
func (i Identity) HasScope(scope string) bool {
	return slices.Contains(i.Scopes, scope)
}

// IdentityVerifier resolves a bearer token to an identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
