package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

// Users manages user profiles.
type Users struct {
	userStore model.UserStore
	oracle    model.TaxonomyOracle
	cache     model.Cache
	logger    *logger.Logger
}

func NewUsers(
	userStore model.UserStore,
	oracle model.TaxonomyOracle,
	cache model.Cache,
	logger *logger.Logger,
) *Users {
	return &Users{
		userStore: userStore,
		oracle:    oracle,
		cache:     cache,
		logger:    logger,
	}
}

func (s *Users) Register(ctx context.Context, identity model.Identity, params model.RegisterUserParams) (model.User, error) {
	if !identity.HasRole(model.RoleUser) {
		return model.User{}, apierror.Forbidden("User role is required to register a user profile")
	}
	if err := validation.Var("email", identity.Email, "required,email"); err != nil {
		return model.User{}, err
	}
	if err := validation.Struct(params); err != nil {
		return model.User{}, err
	}

	if _, err := s.userStore.GetByAuthID(ctx, identity.Subject); err == nil {
		return model.User{}, apierror.Conflict("User already registered")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.Internal(err)
	}

	if _, err := s.userStore.GetByEmail(ctx, identity.Email); err == nil {
		return model.User{}, apierror.Conflict("User with this email already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierror.Internal(err)
	}

	taken, err := s.userStore.UsernameTaken(ctx, params.Username, identity.Subject)
	if err != nil {
		return model.User{}, apierror.Internal(err)
	}
	if taken {
		return model.User{}, apierror.Conflict("Username already taken")
	}

	prefs, err := normalizePreferences(ctx, s.oracle, params.Preferences)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user, err := s.userStore.Create(ctx, model.User{
		ID:          uuid.New(),
		AuthID:      identity.Subject,
		Email:       identity.Email,
		Username:    params.Username,
		Phone:       params.Phone,
		Preferences: prefs,
		Privacy: model.PrivacySettings{
			DataSharingConsent: params.DataSharingConsent,
			AnonymizeData:      params.AnonymizeData,
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, apierror.Conflict("User already exists")
		}
		s.logger.Error("Users service: failed to create user", "sub", identity.Subject, "error", err)
		return model.User{}, apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user)...)
	s.logger.Info("Users service: user registered", "user_id", user.ID)

	return user, nil
}

// Get returns the caller's profile, read through the cache.
func (s *Users) Get(ctx context.Context, identity model.Identity) (model.User, error) {
	return readThrough(ctx, s.cache, s.logger, cache.UserKey(identity.Subject), cache.TTLUserData, func() (model.User, error) {
		return s.load(ctx, identity.Subject)
	})
}

func (s *Users) Update(ctx context.Context, identity model.Identity, params model.UpdateUserParams) (model.User, error) {
	if err := validation.Struct(params); err != nil {
		return model.User{}, err
	}

	if params.Username != nil {
		taken, err := s.userStore.UsernameTaken(ctx, *params.Username, identity.Subject)
		if err != nil {
			return model.User{}, apierror.Internal(err)
		}
		if taken {
			return model.User{}, apierror.Conflict("Username already taken")
		}
	}

	user, err := s.userStore.UpdateProfile(ctx, identity.Subject, params)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return model.User{}, apierror.NotFound("User not found")
		case errors.Is(err, model.ErrConflict):
			return model.User{}, apierror.Conflict("Username already taken")
		default:
			s.logger.Error("Users service: failed to update user", "sub", identity.Subject, "error", err)
			return model.User{}, apierror.Internal(err)
		}
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user)...)

	return user, nil
}

// Delete removes the caller's profile and every cached view derived from it.
func (s *Users) Delete(ctx context.Context, identity model.Identity) error {
	user, err := s.userStore.Delete(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NotFound("User not found")
		}
		s.logger.Error("Users service: failed to delete user", "sub", identity.Subject, "error", err)
		return apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user, user.Privacy.OptOutStores...)...)
	s.logger.Info("Users service: user deleted", "user_id", user.ID)

	return nil
}

func (s *Users) load(ctx context.Context, authID string) (model.User, error) {
	user, err := s.userStore.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierror.NotFound("User not found")
		}
		s.logger.Error("Users service: failed to get user", "sub", authID, "error", err)
		return model.User{}, apierror.Internal(err)
	}
	return user, nil
}
