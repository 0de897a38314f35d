// Package usage records API key usage off the request path.
package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/metrics"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.UsageTracker = (*Tracker)(nil)

const drainTimeout = 5 * time.Second

// UsageWriter persists usage events.
type UsageWriter interface {
	Insert(ctx context.Context, usage model.APIUsage) error
}

// KeyToucher stamps a key's last use.
type KeyToucher interface {
	TouchLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error
}

// Tracker is a supervised worker fed by a bounded queue. Track never blocks;
// events that do not fit in the queue are dropped.
type Tracker struct {
	queue  chan model.APIUsage
	usage  UsageWriter
	keys   KeyToucher
	logger *logger.Logger
}

func NewTracker(usage UsageWriter, keys KeyToucher, queueSize int, logger *logger.Logger) *Tracker {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Tracker{
		queue:  make(chan model.APIUsage, queueSize),
		usage:  usage,
		keys:   keys,
		logger: logger,
	}
}

// Track enqueues an event.
func (t *Tracker) Track(u model.APIUsage) {
	select {
	case t.queue <- u:
	default:
		metrics.UsageEventsDropped.Inc()
		t.logger.Warn("usage tracker: queue full, dropping event", "key_id", u.APIKeyID, "method", u.Method)
	}
}

// Serve runs the worker until ctx is done, then drains what is queued.
func (t *Tracker) Serve(ctx context.Context) error {
	for {
		select {
		case u := <-t.queue:
			t.record(ctx, u)
		case <-ctx.Done():
			t.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		}
	}
}

func (t *Tracker) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	for {
		select {
		case u := <-t.queue:
			t.record(ctx, u)
		default:
			return
		}
	}
}

func (t *Tracker) record(ctx context.Context, u model.APIUsage) {
	if err := t.usage.Insert(ctx, u); err != nil {
		metrics.UsageEventsRecorded.WithLabelValues("error").Inc()
		t.logger.Error("usage tracker: failed to insert usage", "key_id", u.APIKeyID, "error", err)
		return
	}

	if err := t.keys.TouchLastUsed(ctx, u.APIKeyID, u.Timestamp); err != nil {
		t.logger.Error("usage tracker: failed to update last use", "key_id", u.APIKeyID, "error", err)
	}

	metrics.UsageEventsRecorded.WithLabelValues("ok").Inc()
}

func (t *Tracker) String() string {
	return "usage-tracker"
}
