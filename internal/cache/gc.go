package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/CDevmina/Tapiro-sub000/internal/logger"
)

const gcDiscardRatio = 0.5

// GC reclaims value log space of an on-disk cache. It is meant to run under a supervisor.
type GC struct {
	cache    *Badger
	interval time.Duration
	logger   *logger.Logger
}

func NewGC(cache *Badger, interval time.Duration, logger *logger.Logger) *GC {
	return &GC{cache: cache, interval: interval, logger: logger}
}

// Serve collects on every tick until ctx is done.
func (g *GC) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.collect(); err != nil {
				g.logger.Warn("cache gc: value log collection failed", "error", err)
			}
		}
	}
}

// collect rewrites value log files until badger finds nothing to reclaim.
func (g *GC) collect() error {
	for {
		err := g.cache.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return err
		}
	}
}

func (g *GC) String() string {
	return "cache-gc"
}
