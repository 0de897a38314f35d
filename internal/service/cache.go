package service

import (
	"context"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// invalidate deletes keys after a durable write. Failures are logged and
// otherwise ignored; the write has already happened.
func invalidate(ctx context.Context, c model.Cache, log *logger.Logger, keys ...string) {
	if err := c.Invalidate(ctx, keys...); err != nil {
		log.Error("failed to invalidate cache", "keys", keys, "error", err)
	}
}

// userKeys lists every cached view derived from user, plus the per-store
// snapshots of extraStores.
func userKeys(user model.User, extraStores ...string) []string {
	userID := user.ID.String()
	keys := []string{
		cache.UserKey(user.AuthID),
		cache.PreferencesKey(user.AuthID),
		cache.PersonalizedAdsKey(userID),
	}

	seen := make(map[string]struct{}, len(user.Privacy.OptInStores)+len(extraStores))
	for _, stores := range [][]string{user.Privacy.OptInStores, extraStores} {
		for _, storeID := range stores {
			if _, ok := seen[storeID]; ok {
				continue
			}
			seen[storeID] = struct{}{}
			keys = append(keys, cache.StorePreferencesKey(userID, storeID))
		}
	}

	return keys
}

// readThrough returns the cached value of key or loads, caches and returns it.
func readThrough[T any](ctx context.Context, c model.Cache, log *logger.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	ok, err := cache.GetJSON(ctx, c, key, &cached)
	if err != nil {
		log.Warn("failed to read cache", "key", key, "error", err)
	}
	if ok {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := cache.SetJSON(ctx, c, key, value, ttl); err != nil {
		log.Warn("failed to write cache", "key", key, "error", err)
	}
	return value, nil
}
