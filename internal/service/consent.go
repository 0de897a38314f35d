package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/metrics"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

const (
	msgNoConsent     = "User has not provided consent for data sharing"
	msgOptedOut      = "No consent: user has opted out from sharing data with this store"
	msgNotOptedIn    = "User has not opted in to share data with this store"
	msgUserNotFound  = "User not found"
	msgStoreNotFound = "Store not found"
)

// Consent owns the per-store consent state machine and the preference views
// derived from it.
//
// A store may read a user's data only when the user consented globally and
// has not opted out from that store. A store in neither set is opted in on
// first access when auto opt-in is enabled.
type Consent struct {
	userStore  model.UserStore
	storeStore model.StoreStore
	oracle     model.TaxonomyOracle
	cache      model.Cache
	autoOptIn  bool
	logger     *logger.Logger
}

func NewConsent(
	userStore model.UserStore,
	storeStore model.StoreStore,
	oracle model.TaxonomyOracle,
	cache model.Cache,
	autoOptIn bool,
	logger *logger.Logger,
) *Consent {
	return &Consent{
		userStore:  userStore,
		storeStore: storeStore,
		oracle:     oracle,
		cache:      cache,
		autoOptIn:  autoOptIn,
		logger:     logger,
	}
}

// OptIn lets storeID read the caller's data.
func (s *Consent) OptIn(ctx context.Context, identity model.Identity, storeID string) (model.PrivacySettings, error) {
	user, storeID, err := s.consentTarget(ctx, identity, storeID)
	if err != nil {
		return model.PrivacySettings{}, err
	}

	updated, err := s.userStore.OptIn(ctx, user.ID, storeID)
	if err != nil {
		return model.PrivacySettings{}, s.userError(err, "opt in", user.AuthID)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(updated, storeID)...)
	metrics.ConsentChanges.WithLabelValues("opt_in").Inc()
	s.logger.Info("Consent service: user opted in", "user_id", user.ID, "store_id", storeID)

	return updated.Privacy, nil
}

// OptOut stops storeID from reading the caller's data.
func (s *Consent) OptOut(ctx context.Context, identity model.Identity, storeID string) (model.PrivacySettings, error) {
	user, storeID, err := s.consentTarget(ctx, identity, storeID)
	if err != nil {
		return model.PrivacySettings{}, err
	}

	updated, err := s.userStore.OptOut(ctx, user.ID, storeID)
	if err != nil {
		return model.PrivacySettings{}, s.userError(err, "opt out", user.AuthID)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(updated, storeID)...)
	metrics.ConsentChanges.WithLabelValues("opt_out").Inc()
	s.logger.Info("Consent service: user opted out", "user_id", user.ID, "store_id", storeID)

	return updated.Privacy, nil
}

// consentTarget resolves the caller and the canonical form of storeID.
func (s *Consent) consentTarget(ctx context.Context, identity model.Identity, storeID string) (model.User, string, error) {
	if err := validation.Var("storeId", storeID, "required,uuid"); err != nil {
		return model.User{}, "", err
	}
	id, err := uuid.Parse(storeID)
	if err != nil {
		return model.User{}, "", apierror.BadRequest("Invalid storeId")
	}

	if _, err := s.storeStore.GetByID(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("Consent service: failed to get store", "store_id", storeID, "error", err)
		return model.User{}, "", apierror.Internal(err)
	}

	user, err := s.userStore.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		return model.User{}, "", s.userError(err, "get user", identity.Subject)
	}

	return user, id.String(), nil
}

// EnsureAccess checks that storeID may read user's data, opting the user in
// when the store is in neither set. It returns the user as it is after any
// change.
func (s *Consent) EnsureAccess(ctx context.Context, user model.User, storeID string) (model.User, error) {
	if !user.Privacy.DataSharingConsent {
		return model.User{}, apierror.Forbidden(msgNoConsent)
	}

	switch user.Privacy.StateFor(storeID) {
	case model.ConsentOptedOut:
		return model.User{}, apierror.Forbidden(msgOptedOut)
	case model.ConsentOptedIn:
		return user, nil
	}

	if !s.autoOptIn {
		return model.User{}, apierror.Forbidden(msgNotOptedIn)
	}

	changed, err := s.userStore.AutoOptIn(ctx, user.ID, storeID)
	if err != nil {
		s.logger.Error("Consent service: auto opt-in failed", "user_id", user.ID, "store_id", storeID, "error", err)
		return model.User{}, apierror.Internal(err)
	}

	if !changed {
		// Someone else moved the store first; the stored state decides.
		current, err := s.userStore.GetByID(ctx, user.ID)
		if err != nil {
			return model.User{}, s.userError(err, "reload user", user.AuthID)
		}
		if current.Privacy.StateFor(storeID) != model.ConsentOptedIn {
			return model.User{}, apierror.Forbidden(msgOptedOut)
		}
		return current, nil
	}

	user.Privacy.OptInStores = append(append([]string{}, user.Privacy.OptInStores...), storeID)
	invalidate(ctx, s.cache, s.logger, userKeys(user)...)
	metrics.ConsentChanges.WithLabelValues("auto_opt_in").Inc()
	s.logger.Info("Consent service: user auto opted in", "user_id", user.ID, "store_id", storeID)

	return user, nil
}

// GetPreferencesForStore returns the preference snapshot storeID may see for
// the user with email. Consent is always checked against the stored user
// before a cached snapshot is served.
func (s *Consent) GetPreferencesForStore(ctx context.Context, storeID uuid.UUID, email string) (model.StorePreferences, error) {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return model.StorePreferences{}, err
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return model.StorePreferences{}, s.userError(err, "get user by email", "")
	}

	user, err = s.EnsureAccess(ctx, user, storeID.String())
	if err != nil {
		return model.StorePreferences{}, err
	}

	key := cache.StorePreferencesKey(user.ID.String(), storeID.String())
	return readThrough(ctx, s.cache, s.logger, key, cache.TTLUserData, func() (model.StorePreferences, error) {
		prefs := user.Preferences
		if prefs == nil {
			prefs = []model.Preference{}
		}
		return model.StorePreferences{
			UserID:      user.ID,
			StoreID:     storeID.String(),
			Preferences: prefs,
			Anonymized:  user.Privacy.AnonymizeData,
			UpdatedAt:   user.UpdatedAt,
		}, nil
	})
}

// GetOwnPreferences returns the caller's preferences and privacy settings.
func (s *Consent) GetOwnPreferences(ctx context.Context, identity model.Identity) (model.UserPreferences, error) {
	return readThrough(ctx, s.cache, s.logger, cache.PreferencesKey(identity.Subject), cache.TTLUserData, func() (model.UserPreferences, error) {
		user, err := s.userStore.GetByAuthID(ctx, identity.Subject)
		if err != nil {
			return model.UserPreferences{}, s.userError(err, "get user", identity.Subject)
		}
		return preferencesView(user), nil
	})
}

// UpdatePreferences replaces the caller's preferences. Every entry is
// validated before anything is written.
func (s *Consent) UpdatePreferences(ctx context.Context, identity model.Identity, prefs []model.Preference) (model.UserPreferences, error) {
	normalized, err := normalizePreferences(ctx, s.oracle, prefs)
	if err != nil {
		return model.UserPreferences{}, err
	}

	user, err := s.userStore.UpdatePreferences(ctx, identity.Subject, normalized)
	if err != nil {
		return model.UserPreferences{}, s.userError(err, "update preferences", identity.Subject)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user)...)

	return preferencesView(user), nil
}

// UpdatePrivacy sets the caller's global consent flags.
func (s *Consent) UpdatePrivacy(ctx context.Context, identity model.Identity, consent, anonymize bool) (model.PrivacySettings, error) {
	user, err := s.userStore.UpdatePrivacy(ctx, identity.Subject, consent, anonymize)
	if err != nil {
		return model.PrivacySettings{}, s.userError(err, "update privacy", identity.Subject)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user)...)

	return user.Privacy, nil
}

func (s *Consent) userError(err error, op, authID string) error {
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NotFound(msgUserNotFound)
	}
	s.logger.Error("Consent service: failed to "+op, "sub", authID, "error", err)
	return apierror.Internal(err)
}

func preferencesView(user model.User) model.UserPreferences {
	prefs := user.Preferences
	if prefs == nil {
		prefs = []model.Preference{}
	}
	return model.UserPreferences{
		UserID:      user.ID,
		Preferences: prefs,
		Privacy:     user.Privacy,
		UpdatedAt:   user.UpdatedAt,
	}
}
