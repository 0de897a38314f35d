package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoreStore defines persistence operations for stores.
type StoreStore interface {
	Create(ctx context.Context, store Store) (Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (Store, error)
	GetByAuthID(ctx context.Context, authID string) (Store, error)
	Update(ctx context.Context, authID string, params UpdateStoreParams) (Store, error)
	Delete(ctx context.Context, authID string) (Store, error)
}

// Store is a merchant that submits customer data and reads consented preferences.
type Store struct {
	ID        uuid.UUID `json:"id"`
	AuthID    string    `json:"authId"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Email     string    `json:"email"`
	Webhooks  []Webhook `json:"webhooks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Webhook is a store callback subscription.
type Webhook struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1"`
}

// RegisterStoreParams carries registration input for a store profile.
type RegisterStoreParams struct {
	Name     string    `json:"name" validate:"required,max=120"`
	Address  string    `json:"address,omitempty" validate:"max=300"`
	Webhooks []Webhook `json:"webhooks,omitempty" validate:"dive"`
}

// UpdateStoreParams carries store fields that may change after registration.
type UpdateStoreParams struct {
	Name     *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Address  *string   `json:"address,omitempty" validate:"omitempty,max=300"`
	Webhooks []Webhook `json:"webhooks,omitempty" validate:"omitempty,dive"`
}
