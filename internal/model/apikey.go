package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefixLength is the number of plaintext characters persisted for lookup.
const APIKeyPrefixLength = 8

// APIKeyStore defines persistence operations for store API keys.
// Keys are never deleted; revocation flips their status.
type APIKeyStore interface {
	Create(ctx context.Context, key APIKey) (APIKey, error)
	GetByID(ctx context.Context, storeID, keyID uuid.UUID) (APIKey, error)
	GetByStoreAndPrefix(ctx context.Context, storeID uuid.UUID, prefix string) (APIKey, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]APIKey, error)
	FindActiveByPrefix(ctx context.Context, prefix string) ([]APIKey, error)
	Revoke(ctx context.Context, storeID, keyID uuid.UUID) (APIKey, error)
	TouchLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error
}

// APIKeyStatus is the lifecycle state of an API key.
type APIKeyStatus string

const (
	APIKeyActive  APIKeyStatus = "active"
	APIKeyRevoked APIKeyStatus = "revoked"
)

// APIKey is a stored store credential. Only the prefix and the digest are persisted.
type APIKey struct {
	ID         uuid.UUID    `json:"keyId"`
	StoreID    uuid.UUID    `json:"storeId"`
	Prefix     string       `json:"prefix"`
	HashedKey  string       `json:"-"`
	Name       string       `json:"name"`
	Status     APIKeyStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	RevokedAt  *time.Time   `json:"revokedAt,omitempty"`
	LastUsedAt *time.Time   `json:"lastUsedAt,omitempty"`
}

// IssuedAPIKey is returned exactly once, when a key is created.
type IssuedAPIKey struct {
	KeyID     uuid.UUID `json:"keyId"`
	Name      string    `json:"name"`
	Prefix    string    `json:"prefix"`
	APIKey    string    `json:"apiKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIKeyPrincipal is the resolved identity behind a presented API key.
type APIKeyPrincipal struct {
	StoreID uuid.UUID
	KeyID   uuid.UUID
	Prefix  string
}
