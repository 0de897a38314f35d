package testutil

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/CDevmina/Tapiro-sub000/internal/cache"
)

// MakeCache returns an in-memory badger cache closed at test cleanup.
func MakeCache(t *testing.T) *cache.Badger {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return cache.NewBadger(db)
}
