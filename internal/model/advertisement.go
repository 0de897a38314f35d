package model

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// AdvertisementStore defines persistence operations for advertisements.
type AdvertisementStore interface {
	Create(ctx context.Context, ad Advertisement) (Advertisement, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (Advertisement, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]Advertisement, error)
	ListActive(ctx context.Context, now time.Time) ([]Advertisement, error)
	ListActiveByStore(ctx context.Context, storeID uuid.UUID, now time.Time) ([]Advertisement, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) (Advertisement, error)
}

// Advertisement is a store campaign targeted at product categories.
type Advertisement struct {
	ID               uuid.UUID `json:"id"`
	StoreID          uuid.UUID `json:"storeId"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	TargetCategories []string  `json:"targetCategories"`
	Validity         Validity  `json:"validityPeriod"`
	MediaURL         string    `json:"mediaUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validity is the campaign window. An ad is active when Start <= now <= End.
type Validity struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ActiveAt reports whether the window contains t.
func (v Validity) ActiveAt(t time.Time) bool {
	return !t.Before(v.Start) && !t.After(v.End)
}

// CreateAdParams carries input for a new advertisement.
type CreateAdParams struct {
	Title            string    `json:"title" validate:"required,max=200"`
	Description      string    `json:"description,omitempty" validate:"max=2000"`
	TargetCategories []string  `json:"targetCategories" validate:"required,min=1,dive,required"`
	Start            time.Time `json:"start" validate:"required"`
	End              time.Time `json:"end" validate:"required,gtfield=Start"`
	Media            io.Reader `json:"-"`
	MediaSize        int64     `json:"-"`
	MediaContentType string    `json:"-"`
}

// Profile is what the ranking engine knows about a user.
type Profile struct {
	Categories []string
	Purchases  []UserData
}
