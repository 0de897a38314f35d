package context

import (
	stdctx "context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

func TestManager_SetAndGetIdentity(t *testing.T) {
	m := NewManager()
	identity := model.Identity{Subject: "auth0|user", Roles: []string{"user"}, Scopes: []string{"user:read"}}
	ctx := m.SetIdentityToContext(stdctx.Background(), identity)

	got, ok := m.GetIdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, identity, got)
}

func TestManager_GetIdentity_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetIdentityFromContext(stdctx.Background())
	assert.False(t, ok)
}

func TestManager_GetIdentity_EmptySubject(t *testing.T) {
	m := NewManager()
	ctx := m.SetIdentityToContext(stdctx.Background(), model.Identity{Email: "a@b.c"})
	_, ok := m.GetIdentityFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_SetAndGetPrincipal(t *testing.T) {
	m := NewManager()
	principal := model.APIKeyPrincipal{StoreID: uuid.New(), KeyID: uuid.New(), Prefix: "abcd1234"}
	ctx := m.SetPrincipalToContext(stdctx.Background(), principal)

	got, ok := m.GetPrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, principal, got)

	_, ok = m.GetIdentityFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_GetPrincipal_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetPrincipalFromContext(stdctx.Background())
	assert.False(t, ok)
}
