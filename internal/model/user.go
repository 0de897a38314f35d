package model

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
//
// OptIn, OptOut and AutoOptIn must each be a single atomic update so that a
// store id is never observed in both the opt-in and opt-out sets.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByAuthID(ctx context.Context, authID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UsernameTaken(ctx context.Context, username string, exceptAuthID string) (bool, error)
	UpdateProfile(ctx context.Context, authID string, params UpdateUserParams) (User, error)
	UpdatePreferences(ctx context.Context, authID string, preferences []Preference) (User, error)
	UpdatePrivacy(ctx context.Context, authID string, consent, anonymize bool) (User, error)
	OptIn(ctx context.Context, userID uuid.UUID, storeID string) (User, error)
	OptOut(ctx context.Context, userID uuid.UUID, storeID string) (User, error)
	AutoOptIn(ctx context.Context, userID uuid.UUID, storeID string) (bool, error)
	RemoveStore(ctx context.Context, storeID string) ([]User, error)
	Delete(ctx context.Context, authID string) (User, error)
}

// User is a shopper whose preferences stores may read with consent.
type User struct {
	ID          uuid.UUID       `json:"id"`
	AuthID      string          `json:"authId"`
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	Phone       string          `json:"phone,omitempty"`
	Preferences []Preference    `json:"preferences"`
	Privacy     PrivacySettings `json:"privacySettings"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Preference is one weighted interest. Duplicate categories are legal and additive.
type Preference struct {
	Category   string            `json:"category" validate:"required"`
	Score      float64           `json:"score" validate:"gte=0,lte=1"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// PrivacySettings holds global consent and the per-store opt-in/opt-out sets.
type PrivacySettings struct {
	DataSharingConsent bool     `json:"dataSharingConsent"`
	AnonymizeData      bool     `json:"anonymizeData"`
	OptInStores        []string `json:"optInStores"`
	OptOutStores       []string `json:"optOutStores"`
}

// ConsentState is the per (user, store) consent state.
type ConsentState string

const (
	ConsentDefault  ConsentState = "default"
	ConsentOptedIn  ConsentState = "opted_in"
	ConsentOptedOut ConsentState = "opted_out"
)

// StateFor reports the consent state of the given store.
// Opt-out wins if a store ever appears in both sets.
func (p PrivacySettings) StateFor(storeID string) ConsentState {
	switch {
	case slices.Contains(p.OptOutStores, storeID):
		return ConsentOptedOut
	case slices.Contains(p.OptInStores, storeID):
		return ConsentOptedIn
	default:
		return ConsentDefault
	}
}

// UpdateUserParams carries profile fields a user may change.
type UpdateUserParams struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,username"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// RegisterUserParams carries registration input for a user profile.
type RegisterUserParams struct {
	Username           string       `json:"username" validate:"required,min=3,max=30,username"`
	Phone              string       `json:"phone,omitempty" validate:"omitempty,e164"`
	Preferences        []Preference `json:"preferences" validate:"dive"`
	DataSharingConsent bool         `json:"dataSharingConsent"`
	AnonymizeData      bool         `json:"anonymizeData"`
}

// UserPreferences is the user's own view of their preferences.
type UserPreferences struct {
	UserID      uuid.UUID       `json:"userId"`
	Preferences []Preference    `json:"preferences"`
	Privacy     PrivacySettings `json:"privacySettings"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StorePreferences is the snapshot a consenting user's data exposes to a store.
type StorePreferences struct {
	UserID      uuid.UUID    `json:"userId"`
	StoreID     string       `json:"storeId"`
	Preferences []Preference `json:"preferences"`
	Anonymized  bool         `json:"anonymized"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
