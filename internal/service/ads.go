package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/ranking"
	"github.com/CDevmina/Tapiro-sub000/internal/taxonomy"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

const (
	profilePurchaseLimit = 50
	maxAdLimit           = 50
	msgAdNotFound        = "Advertisement not found"
)

// Ads manages store campaigns and ranks them for users.
type Ads struct {
	storeStore model.StoreStore
	userStore  model.UserStore
	adStore    model.AdvertisementStore
	dataStore  model.UserDataStore
	consent    ConsentChecker
	storage    model.Storage
	cache      model.Cache
	logger     *logger.Logger
	now        func() time.Time
}

func NewAds(
	storeStore model.StoreStore,
	userStore model.UserStore,
	adStore model.AdvertisementStore,
	dataStore model.UserDataStore,
	consent ConsentChecker,
	storage model.Storage,
	cache model.Cache,
	logger *logger.Logger,
) *Ads {
	return &Ads{
		storeStore: storeStore,
		userStore:  userStore,
		adStore:    adStore,
		dataStore:  dataStore,
		consent:    consent,
		storage:    storage,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

func mediaKey(storeID, adID uuid.UUID) string {
	return fmt.Sprintf("ads/%s/%s", storeID, adID)
}

// Create stores a new advertisement for the caller's store, uploading its
// media first when present.
func (s *Ads) Create(ctx context.Context, identity model.Identity, params model.CreateAdParams) (model.Advertisement, error) {
	if err := validation.Struct(params); err != nil {
		return model.Advertisement{}, err
	}

	categories := make([]string, 0, len(params.TargetCategories))
	for _, c := range params.TargetCategories {
		if !taxonomy.IsValidCategory(c) {
			return model.Advertisement{}, apierror.BadRequest("Invalid category: %s", c)
		}
		categories = append(categories, taxonomy.Normalize(c))
	}

	store, err := s.store(ctx, identity)
	if err != nil {
		return model.Advertisement{}, err
	}

	now := s.now().UTC()
	ad := model.Advertisement{
		ID:               uuid.New(),
		StoreID:          store.ID,
		Title:            params.Title,
		Description:      params.Description,
		TargetCategories: categories,
		Validity:         model.Validity{Start: params.Start.UTC(), End: params.End.UTC()},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if params.Media != nil {
		key := mediaKey(store.ID, ad.ID)
		if err := s.storage.Upload(ctx, key, params.Media, params.MediaSize, params.MediaContentType); err != nil {
			s.logger.Error("Ads service: failed to upload media", "ad_id", ad.ID, "error", err)
			return model.Advertisement{}, apierror.Internal(err)
		}
		ad.MediaURL = key
	}

	created, err := s.adStore.Create(ctx, ad)
	if err != nil {
		s.logger.Error("Ads service: failed to create advertisement", "store_id", store.ID, "error", err)
		if ad.MediaURL != "" {
			s.deleteMedia(ctx, ad.MediaURL)
		}
		return model.Advertisement{}, apierror.Internal(err)
	}

	s.logger.Info("Ads service: advertisement created", "store_id", store.ID, "ad_id", created.ID)

	return created, nil
}

func (s *Ads) List(ctx context.Context, identity model.Identity) ([]model.Advertisement, error) {
	store, err := s.store(ctx, identity)
	if err != nil {
		return nil, err
	}

	ads, err := s.adStore.ListByStore(ctx, store.ID)
	if err != nil {
		s.logger.Error("Ads service: failed to list advertisements", "store_id", store.ID, "error", err)
		return nil, apierror.Internal(err)
	}

	return ads, nil
}

func (s *Ads) Delete(ctx context.Context, identity model.Identity, adID uuid.UUID) error {
	store, err := s.store(ctx, identity)
	if err != nil {
		return err
	}

	ad, err := s.adStore.Delete(ctx, store.ID, adID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NotFound(msgAdNotFound)
		}
		s.logger.Error("Ads service: failed to delete advertisement", "ad_id", adID, "error", err)
		return apierror.Internal(err)
	}

	if ad.MediaURL != "" {
		s.deleteMedia(ctx, ad.MediaURL)
	}

	return nil
}

// Media opens the media object of one of the caller's advertisements.
// The caller closes the reader.
func (s *Ads) Media(ctx context.Context, identity model.Identity, adID uuid.UUID) (io.ReadCloser, error) {
	store, err := s.store(ctx, identity)
	if err != nil {
		return nil, err
	}

	ad, err := s.adStore.GetByID(ctx, store.ID, adID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound(msgAdNotFound)
		}
		return nil, apierror.Internal(err)
	}
	if ad.MediaURL == "" {
		return nil, apierror.NotFound("Advertisement has no media")
	}

	reader, err := s.storage.Download(ctx, ad.MediaURL)
	if err != nil {
		s.logger.Error("Ads service: failed to download media", "ad_id", adID, "error", err)
		return nil, apierror.Internal(err)
	}

	return reader, nil
}

// Personalized ranks every active advertisement for the caller. The full
// ranking is cached briefly and truncated per request.
func (s *Ads) Personalized(ctx context.Context, identity model.Identity, limit int) ([]model.Advertisement, error) {
	limit, err := adLimit(limit)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound(msgUserNotFound)
		}
		return nil, apierror.Internal(err)
	}

	ranked, err := readThrough(ctx, s.cache, s.logger, cache.PersonalizedAdsKey(user.ID.String()), cache.TTLPersonalizedAds,
		func() ([]model.Advertisement, error) {
			now := s.now().UTC()
			ads, err := s.adStore.ListActive(ctx, now)
			if err != nil {
				s.logger.Error("Ads service: failed to list active advertisements", "error", err)
				return nil, apierror.Internal(err)
			}
			return s.rank(ctx, user, ads, len(ads), now)
		})
	if err != nil {
		return nil, err
	}

	return truncate(ranked, limit), nil
}

// ForScan ranks a store's active advertisements for the user a store has
// just scanned. The same consent rules as a preference read apply.
func (s *Ads) ForScan(ctx context.Context, storeID uuid.UUID, email string, limit int) ([]model.Advertisement, error) {
	limit, err := adLimit(limit)
	if err != nil {
		return nil, err
	}
	if err := validation.Var("email", email, "required,email"); err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound(msgUserNotFound)
		}
		return nil, apierror.Internal(err)
	}

	user, err = s.consent.EnsureAccess(ctx, user, storeID.String())
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ads, err := s.adStore.ListActiveByStore(ctx, storeID, now)
	if err != nil {
		s.logger.Error("Ads service: failed to list store advertisements", "store_id", storeID, "error", err)
		return nil, apierror.Internal(err)
	}

	return s.rank(ctx, user, ads, limit, now)
}

func (s *Ads) rank(ctx context.Context, user model.User, ads []model.Advertisement, limit int, now time.Time) ([]model.Advertisement, error) {
	if len(ads) == 0 {
		return []model.Advertisement{}, nil
	}

	purchases, err := s.dataStore.ListPurchasesByUser(ctx, user.ID, profilePurchaseLimit)
	if err != nil {
		s.logger.Error("Ads service: failed to list purchases", "user_id", user.ID, "error", err)
		return nil, apierror.Internal(err)
	}

	profile := &model.Profile{Purchases: purchases}
	for _, pref := range user.Preferences {
		profile.Categories = append(profile.Categories, pref.Category)
	}

	return ranking.Rank(ads, profile, limit, now), nil
}

func (s *Ads) store(ctx context.Context, identity model.Identity) (model.Store, error) {
	store, err := s.storeStore.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Store{}, apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("Ads service: failed to get store", "sub", identity.Subject, "error", err)
		return model.Store{}, apierror.Internal(err)
	}
	return store, nil
}

func (s *Ads) deleteMedia(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Ads service: failed to delete media", "key", key, "error", err)
	}
}

func adLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, apierror.BadRequest("limit must not be negative")
	case limit == 0:
		return ranking.DefaultLimit, nil
	case limit > maxAdLimit:
		return maxAdLimit, nil
	}
	return limit, nil
}

func truncate(ads []model.Advertisement, limit int) []model.Advertisement {
	if len(ads) > limit {
		return ads[:limit]
	}
	return ads
}
