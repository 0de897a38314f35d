package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

const readinessKey = "ops:readiness"

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker is satisfied by the outbound service clients.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// DatabaseCheck pings the database.
func DatabaseCheck(db Pinger) Check {
	return Check{Name: "database", Probe: db.Ping}
}

// CacheCheck writes and reads back a short-lived key.
func CacheCheck(cache model.Cache) Check {
	return Check{
		Name: "cache",
		Probe: func(ctx context.Context) error {
			want := time.Now().UTC().Format(time.RFC3339Nano)
			if err := cache.Set(ctx, readinessKey, want, time.Minute); err != nil {
				return fmt.Errorf("failed to write: %w", err)
			}
			got, ok, err := cache.Get(ctx, readinessKey)
			if err != nil {
				return fmt.Errorf("failed to read: %w", err)
			}
			if !ok || got != want {
				return fmt.Errorf("round trip returned %q", got)
			}
			return nil
		},
	}
}

// ServiceCheck probes an outbound dependency.
func ServiceCheck(name string, svc HealthChecker) Check {
	return Check{Name: name, Probe: svc.Health}
}
