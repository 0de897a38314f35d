package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

const (
	apiKeyBytes       = 32
	defaultAPIKeyName = "API Key"
	defaultUsageDays  = 30
	issueAttempts     = 3
	msgInvalidAPIKey  = "Invalid API key"
)

// APIKeys issues, resolves and revokes store API keys. Only a key's prefix
// and SHA-256 digest are ever stored.
type APIKeys struct {
	storeStore  model.StoreStore
	apiKeyStore model.APIKeyStore
	usageStore  model.UsageStore
	tracker     model.UsageTracker
	cache       model.Cache
	logger      *logger.Logger
	now         func() time.Time
}

func NewAPIKeys(
	storeStore model.StoreStore,
	apiKeyStore model.APIKeyStore,
	usageStore model.UsageStore,
	tracker model.UsageTracker,
	cache model.Cache,
	logger *logger.Logger,
) *APIKeys {
	return &APIKeys{
		storeStore:  storeStore,
		apiKeyStore: apiKeyStore,
		usageStore:  usageStore,
		tracker:     tracker,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// Issue creates a key for the caller's store and returns its plaintext once.
func (s *APIKeys) Issue(ctx context.Context, identity model.Identity, name string) (model.IssuedAPIKey, error) {
	if name == "" {
		name = defaultAPIKeyName
	}
	if err := validation.Var("name", name, "max=100"); err != nil {
		return model.IssuedAPIKey{}, err
	}

	store, err := s.store(ctx, identity)
	if err != nil {
		return model.IssuedAPIKey{}, err
	}

	for attempt := 0; attempt < issueAttempts; attempt++ {
		plaintext, err := generateKey()
		if err != nil {
			s.logger.Error("API key authority: failed to generate key", "error", err)
			return model.IssuedAPIKey{}, apierror.Internal(err)
		}

		key, err := s.apiKeyStore.Create(ctx, model.APIKey{
			ID:        uuid.New(),
			StoreID:   store.ID,
			Prefix:    plaintext[:model.APIKeyPrefixLength],
			HashedKey: digest(plaintext),
			Name:      name,
			Status:    model.APIKeyActive,
			CreatedAt: s.now().UTC(),
		})
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			s.logger.Error("API key authority: failed to store key", "store_id", store.ID, "error", err)
			return model.IssuedAPIKey{}, apierror.Internal(err)
		}

		invalidate(ctx, s.cache, s.logger, cache.StoreKey(identity.Subject))
		s.logger.Info("API key authority: key issued", "store_id", store.ID, "prefix", key.Prefix)

		return model.IssuedAPIKey{
			KeyID:     key.ID,
			Name:      key.Name,
			Prefix:    key.Prefix,
			APIKey:    plaintext,
			CreatedAt: key.CreatedAt,
		}, nil
	}

	return model.IssuedAPIKey{}, apierror.Internal(fmt.Errorf("prefix collision after %d attempts", issueAttempts))
}

// List returns the caller's keys, newest first.
func (s *APIKeys) List(ctx context.Context, identity model.Identity) ([]model.APIKey, error) {
	store, err := s.store(ctx, identity)
	if err != nil {
		return nil, err
	}

	keys, err := s.apiKeyStore.ListByStore(ctx, store.ID)
	if err != nil {
		s.logger.Error("API key authority: failed to list keys", "store_id", store.ID, "error", err)
		return nil, apierror.Internal(err)
	}

	return keys, nil
}

// Revoke disables a key. The prefix mapping is dropped from the cache so the
// next request with the key fails.
func (s *APIKeys) Revoke(ctx context.Context, identity model.Identity, keyID uuid.UUID) (model.APIKey, error) {
	store, err := s.store(ctx, identity)
	if err != nil {
		return model.APIKey{}, err
	}

	key, err := s.apiKeyStore.GetByID(ctx, store.ID, keyID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.APIKey{}, apierror.NotFound("API key not found")
		}
		s.logger.Error("API key authority: failed to get key", "key_id", keyID, "error", err)
		return model.APIKey{}, apierror.Internal(err)
	}
	if key.Status == model.APIKeyRevoked {
		return model.APIKey{}, apierror.BadRequest("API key is already revoked")
	}

	revoked, err := s.apiKeyStore.Revoke(ctx, store.ID, keyID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.APIKey{}, apierror.BadRequest("API key is already revoked")
		}
		s.logger.Error("API key authority: failed to revoke key", "key_id", keyID, "error", err)
		return model.APIKey{}, apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, cache.APIKeyKey(revoked.Prefix), cache.StoreKey(identity.Subject))
	s.logger.Info("API key authority: key revoked", "store_id", store.ID, "prefix", revoked.Prefix)

	return revoked, nil
}

// Resolve authenticates a presented key. Every failure yields the same
// Unauthorized error. On success a usage event is queued.
func (s *APIKeys) Resolve(ctx context.Context, presented, method, endpoint string) (model.APIKeyPrincipal, error) {
	if presented == "" {
		return model.APIKeyPrincipal{}, apierror.Unauthorized("API key is required")
	}
	if len(presented) < model.APIKeyPrefixLength {
		return model.APIKeyPrincipal{}, apierror.Unauthorized(msgInvalidAPIKey)
	}

	prefix := presented[:model.APIKeyPrefixLength]
	hash := digest(presented)

	key, ok, err := s.resolveCached(ctx, prefix, hash)
	if err != nil {
		return model.APIKeyPrincipal{}, err
	}
	if !ok {
		key, ok, err = s.resolveScan(ctx, prefix, hash)
		if err != nil {
			return model.APIKeyPrincipal{}, err
		}
		if !ok {
			return model.APIKeyPrincipal{}, apierror.Unauthorized(msgInvalidAPIKey)
		}
		if err := s.cache.Set(ctx, cache.APIKeyKey(prefix), key.StoreID.String(), cache.TTLAPIKey); err != nil {
			s.logger.Warn("API key authority: cache write failed", "prefix", prefix, "error", err)
		}
	}

	s.tracker.Track(model.APIUsage{
		APIKeyID:  key.ID,
		StoreID:   key.StoreID,
		Method:    method,
		Endpoint:  endpoint,
		Timestamp: s.now().UTC(),
	})

	return model.APIKeyPrincipal{StoreID: key.StoreID, KeyID: key.ID, Prefix: key.Prefix}, nil
}

// resolveCached trusts the cached prefix to store mapping but always reloads
// the key to confirm it is still active.
func (s *APIKeys) resolveCached(ctx context.Context, prefix, hash string) (model.APIKey, bool, error) {
	cached, ok, err := s.cache.Get(ctx, cache.APIKeyKey(prefix))
	if err != nil {
		s.logger.Warn("API key authority: cache read failed", "prefix", prefix, "error", err)
		return model.APIKey{}, false, nil
	}
	if !ok {
		return model.APIKey{}, false, nil
	}

	storeID, err := uuid.Parse(cached)
	if err != nil {
		return model.APIKey{}, false, nil
	}

	key, err := s.apiKeyStore.GetByStoreAndPrefix(ctx, storeID, prefix)
	if errors.Is(err, model.ErrNotFound) {
		return model.APIKey{}, false, nil
	}
	if err != nil {
		s.logger.Error("API key authority: failed to load key", "prefix", prefix, "error", err)
		return model.APIKey{}, false, apierror.Internal(err)
	}

	if !hashEqual(hash, key.HashedKey) {
		// Another store may hold the same prefix.
		return model.APIKey{}, false, nil
	}
	if key.Status != model.APIKeyActive {
		return model.APIKey{}, false, apierror.Unauthorized(msgInvalidAPIKey)
	}

	return key, true, nil
}

func (s *APIKeys) resolveScan(ctx context.Context, prefix, hash string) (model.APIKey, bool, error) {
	candidates, err := s.apiKeyStore.FindActiveByPrefix(ctx, prefix)
	if err != nil {
		s.logger.Error("API key authority: failed to find keys", "prefix", prefix, "error", err)
		return model.APIKey{}, false, apierror.Internal(err)
	}

	for _, key := range candidates {
		if key.Status == model.APIKeyActive && hashEqual(hash, key.HashedKey) {
			return key, true, nil
		}
	}

	return model.APIKey{}, false, nil
}

// Usage summarizes a key's usage between from and to. Zero bounds default
// to the last 30 days.
func (s *APIKeys) Usage(ctx context.Context, identity model.Identity, keyID uuid.UUID, from, to time.Time) (model.UsageSummary, error) {
	store, err := s.store(ctx, identity)
	if err != nil {
		return model.UsageSummary{}, err
	}

	if _, err := s.apiKeyStore.GetByID(ctx, store.ID, keyID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.UsageSummary{}, apierror.NotFound("API key not found")
		}
		return model.UsageSummary{}, apierror.Internal(err)
	}

	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultUsageDays)
	}
	if from.After(to) {
		return model.UsageSummary{}, apierror.BadRequest("from must not be after to")
	}

	events, err := s.usageStore.ListByKey(ctx, keyID, from, to)
	if err != nil {
		s.logger.Error("API key authority: failed to list usage", "key_id", keyID, "error", err)
		return model.UsageSummary{}, apierror.Internal(err)
	}

	return summarize(keyID, from, to, events), nil
}

func summarize(keyID uuid.UUID, from, to time.Time, events []model.APIUsage) model.UsageSummary {
	summary := model.UsageSummary{
		KeyID:             keyID,
		From:              from,
		To:                to,
		TotalRequests:     len(events),
		MethodBreakdown:   map[string]int{},
		EndpointBreakdown: map[string]int{},
		DailyUsage:        []model.DailyUsage{},
	}

	daily := map[string]int{}
	for _, e := range events {
		summary.MethodBreakdown[e.Method]++
		summary.EndpointBreakdown[e.Endpoint]++
		daily[e.Timestamp.UTC().Format(time.DateOnly)]++
	}

	for date, count := range daily {
		summary.DailyUsage = append(summary.DailyUsage, model.DailyUsage{Date: date, Count: count})
	}
	sort.Slice(summary.DailyUsage, func(i, j int) bool {
		return summary.DailyUsage[i].Date < summary.DailyUsage[j].Date
	})

	return summary
}

func (s *APIKeys) store(ctx context.Context, identity model.Identity) (model.Store, error) {
	store, err := s.storeStore.GetByAuthID(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Store{}, apierror.NotFound(msgStoreNotFound)
		}
		s.logger.Error("API key authority: failed to get store", "sub", identity.Subject, "error", err)
		return model.Store{}, apierror.Internal(err)
	}
	return store, nil
}

func generateKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
