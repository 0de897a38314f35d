// Package cache provides the key/value cache used as a read-through layer for
// user, store and preference documents.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/CDevmina/Tapiro-sub000/internal/metrics"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.Cache = (*Badger)(nil)

// Badger is a model.Cache on an embedded badger database. Entries expire
// through badger's native TTL and Invalidate deletes keys outright.
type Badger struct {
	db *badger.DB
}

// Open opens a badger database at path, or an in-memory one when path is empty.
func Open(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	return &Badger{db: db}, nil
}

// NewBadger wraps an already opened database.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Close closes the underlying database.
func (c *Badger) Close() error {
	return c.db.Close()
}

// Get returns the value of key. The second result is false on a miss.
func (c *Badger) Get(_ context.Context, key string) (string, bool, error) {
	var value string

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return "", false, nil
	}
	if err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return "", false, fmt.Errorf("failed to get cache key: %w", err)
	}

	// An empty value is never a usable entry.
	if value == "" {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return "", false, nil
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return value, true, nil
}

// Set stores value under key for ttl. A non-positive ttl stores without expiry.
func (c *Badger) Set(_ context.Context, key, value string, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to set cache key: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	return nil
}

// Invalidate deletes keys. Deleting an absent key is not an error, so
// invalidating twice is the same as invalidating once.
func (c *Badger) Invalidate(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.CacheOperations.WithLabelValues("invalidate", "error").Inc()
		return fmt.Errorf("failed to invalidate cache keys: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("invalidate", "ok").Add(float64(len(keys)))
	return nil
}

// GetJSON decodes the JSON value of key into dst. It reports false on a miss
// or when the stored value cannot be decoded.
func GetJSON[T any](ctx context.Context, c model.Cache, key string, dst *T) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON stores the JSON encoding of value under key for ttl.
func SetJSON[T any](ctx context.Context, c model.Cache, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}
