package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

// Stores manages store profiles.
type Stores struct {
	storeStore  model.StoreStore
	apiKeyStore model.APIKeyStore
	adStore     model.AdvertisementStore
	userStore   model.UserStore
	storage     model.Storage
	cache       model.Cache
	logger      *logger.Logger
}

func NewStores(
	storeStore model.StoreStore,
	apiKeyStore model.APIKeyStore,
	adStore model.AdvertisementStore,
	userStore model.UserStore,
	storage model.Storage,
	cache model.Cache,
	logger *logger.Logger,
) *Stores {
	return &Stores{
		storeStore:  storeStore,
		apiKeyStore: apiKeyStore,
		adStore:     adStore,
		userStore:   userStore,
		storage:     storage,
		cache:       cache,
		logger:      logger,
	}
}

func (s *Stores) Register(ctx context.Context, identity model.Identity, params model.RegisterStoreParams) (model.Store, error) {
	if !identity.HasRole(model.RoleStore) {
		return model.Store{}, apierror.Forbidden("Store role is required to register a store profile")
	}
	if err := validation.Var("email", identity.Email, "required,email"); err != nil {
		return model.Store{}, err
	}
	if err := validation.Struct(params); err != nil {
		return model.Store{}, err
	}

	if _, err := s.storeStore.GetByAuthID(ctx, identity.Subject); err == nil {
		return model.Store{}, apierror.Conflict("Store already registered")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Store{}, apierror.Internal(err)
	}

	now := time.Now().UTC()
	store, err := s.storeStore.Create(ctx, model.Store{
		ID:        uuid.New(),
		AuthID:    identity.Subject,
		Name:      strings.TrimSpace(params.Name),
		Address:   params.Address,
		Email:     identity.Email,
		Webhooks:  params.Webhooks,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.Store{}, apierror.Conflict("Store already registered")
		}
		s.logger.Error("Stores service: failed to create store", "sub", identity.Subject, "error", err)
		return model.Store{}, apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, cache.StoreKey(identity.Subject))
	s.logger.Info("Stores service: store registered", "store_id", store.ID)

	return store, nil
}

// Get returns the caller's store, read through the cache.
func (s *Stores) Get(ctx context.Context, identity model.Identity) (model.Store, error) {
	return readThrough(ctx, s.cache, s.logger, cache.StoreKey(identity.Subject), cache.TTLStoreData, func() (model.Store, error) {
		return s.byAuthID(ctx, identity.Subject)
	})
}

func (s *Stores) Update(ctx context.Context, identity model.Identity, params model.UpdateStoreParams) (model.Store, error) {
	if err := validation.Struct(params); err != nil {
		return model.Store{}, err
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return model.Store{}, apierror.BadRequest("name must not be empty")
	}

	store, err := s.storeStore.Update(ctx, identity.Subject, params)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Store{}, apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("Stores service: failed to update store", "sub", identity.Subject, "error", err)
		return model.Store{}, apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, cache.StoreKey(identity.Subject))

	return store, nil
}

// Delete removes the caller's store together with its keys and ads. Ad media
// and consent list entries are cleaned up after the store row is gone.
func (s *Stores) Delete(ctx context.Context, identity model.Identity) error {
	store, err := s.byAuthID(ctx, identity.Subject)
	if err != nil {
		return err
	}

	keys, err := s.apiKeyStore.ListByStore(ctx, store.ID)
	if err != nil {
		s.logger.Error("Stores service: failed to list api keys", "store_id", store.ID, "error", err)
		return apierror.Internal(err)
	}

	ads, err := s.adStore.ListByStore(ctx, store.ID)
	if err != nil {
		s.logger.Error("Stores service: failed to list advertisements", "store_id", store.ID, "error", err)
		return apierror.Internal(err)
	}

	if _, err := s.storeStore.Delete(ctx, identity.Subject); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("Stores service: failed to delete store", "store_id", store.ID, "error", err)
		return apierror.Internal(err)
	}

	for _, ad := range ads {
		if ad.MediaURL == "" {
			continue
		}
		if err := s.storage.Delete(ctx, ad.MediaURL); err != nil {
			s.logger.Warn("Stores service: failed to delete media", "key", ad.MediaURL, "error", err)
		}
	}

	stale := []string{cache.StoreKey(identity.Subject)}
	for _, key := range keys {
		stale = append(stale, cache.APIKeyKey(key.Prefix))
	}

	storeID := store.ID.String()
	users, err := s.userStore.RemoveStore(ctx, storeID)
	if err != nil {
		s.logger.Warn("Stores service: failed to clear consent lists", "store_id", store.ID, "error", err)
	}
	for _, user := range users {
		stale = append(stale, userKeys(user, storeID)...)
	}

	invalidate(ctx, s.cache, s.logger, stale...)
	s.logger.Info("Stores service: store deleted",
		"store_id", store.ID,
		"revoked_keys", len(keys),
		"deleted_ads", len(ads),
		"consent_users", len(users))

	return nil
}

func (s *Stores) byAuthID(ctx context.Context, authID string) (model.Store, error) {
	store, err := s.storeStore.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Store{}, apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("Stores service: failed to get store", "sub", authID, "error", err)
		return model.Store{}, apierror.Internal(err)
	}
	return store, nil
}
