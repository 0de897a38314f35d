package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/metrics"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/taxonomy"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

const (
	msgAccepted = "Data accepted for processing"
	msgDelayed  = "Data accepted but AI processing delayed"
)

// ConsentChecker decides whether a store may act on a user's data.
type ConsentChecker interface {
	EnsureAccess(ctx context.Context, user model.User, storeID string) (model.User, error)
}

// Ingestion accepts interaction data submitted by stores.
type Ingestion struct {
	userStore model.UserStore
	dataStore model.UserDataStore
	consent   ConsentChecker
	oracle    model.TaxonomyOracle
	processor model.Processor
	cache     model.Cache
	logger    *logger.Logger
	now       func() time.Time
}

func NewIngestion(
	userStore model.UserStore,
	dataStore model.UserDataStore,
	consent ConsentChecker,
	oracle model.TaxonomyOracle,
	processor model.Processor,
	cache model.Cache,
	logger *logger.Logger,
) *Ingestion {
	return &Ingestion{
		userStore: userStore,
		dataStore: dataStore,
		consent:   consent,
		oracle:    oracle,
		processor: processor,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit stores a batch of purchase or search entries for a consenting user
// and forwards it to the AI processor. Once the record is stored the call
// succeeds even if processing fails.
func (s *Ingestion) Submit(ctx context.Context, storeID uuid.UUID, params model.SubmitUserDataParams) (model.SubmitResult, error) {
	if err := validation.Struct(params); err != nil {
		return model.SubmitResult{}, err
	}

	fingerprint, err := requestFingerprint(storeID, params)
	if err != nil {
		return model.SubmitResult{}, apierror.Internal(err)
	}

	user, err := s.userStore.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.SubmitResult{}, apierror.NotFound(msgUserNotFound)
		}
		s.logger.Error("Ingestion service: failed to get user", "store_id", storeID, "error", err)
		return model.SubmitResult{}, apierror.Internal(err)
	}

	user, err = s.consent.EnsureAccess(ctx, user, storeID.String())
	if err != nil {
		return model.SubmitResult{}, err
	}

	now := s.now().UTC()
	if params.DataType == model.DataTypePurchase {
		if err := s.validateItems(ctx, params.Entries); err != nil {
			return model.SubmitResult{}, err
		}
	}

	record, err := s.dataStore.Create(ctx, model.UserData{
		ID:              uuid.New(),
		UserID:          user.ID,
		StoreID:         storeID,
		Email:           user.Email,
		DataType:        params.DataType,
		Entries:         normalizeEntries(params.Entries, now),
		Metadata:        params.Metadata,
		ProcessedStatus: model.StatusPending,
		Timestamp:       now,
	})
	if err != nil {
		s.logger.Error("Ingestion service: failed to store user data", "store_id", storeID, "user_id", user.ID, "error", err)
		return model.SubmitResult{}, apierror.Internal(err)
	}

	invalidate(ctx, s.cache, s.logger, userKeys(user, storeID.String())...)

	return s.process(ctx, record, fingerprint), nil
}

// validateItems checks every purchase item in one oracle round trip.
func (s *Ingestion) validateItems(ctx context.Context, entries []model.DataEntry) error {
	type position struct{ entry, item int }

	var (
		items     []model.ValidationItem
		positions []position
	)
	for i, entry := range entries {
		for j, item := range entry.Items {
			items = append(items, model.ValidationItem{
				Category:   strings.TrimSpace(item.Category),
				Attributes: item.Attributes,
			})
			positions = append(positions, position{entry: i, item: j})
		}
	}
	if len(items) == 0 {
		return nil
	}

	results, err := s.oracle.ValidateBatch(ctx, items)
	if err != nil {
		if errors.Is(err, model.ErrValidationUnavailable) {
			s.logger.Warn("Ingestion service: taxonomy oracle unavailable", "items", len(items), "error", err)
			return apierror.Unavailable(taxonomyUnavailableMessage).WithCause(err)
		}
		return apierror.Internal(err)
	}

	for i, pos := range positions {
		result, ok := results[strconv.Itoa(i)]
		if !ok {
			return apierror.BadRequest("Validation result missing for entry %d item %d", pos.entry, pos.item)
		}
		if !result.Valid {
			return apierror.BadRequest("Invalid item in entry %d at position %d (%s): %s",
				pos.entry, pos.item, entries[pos.entry].Items[pos.item].Name, result.Message)
		}
	}

	return nil
}

// process forwards record to the AI processor unless an identical request
// was forwarded recently, and records the outcome on the record.
func (s *Ingestion) process(ctx context.Context, record model.UserData, fingerprint string) model.SubmitResult {
	key := cache.AIRequestKey(fingerprint)

	_, seen, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Ingestion service: cache read failed", "key", key, "error", err)
	}
	if seen {
		metrics.AIProcessing.WithLabelValues("deduplicated").Inc()
		return s.finish(ctx, record, model.StatusProcessed)
	}

	err = s.processor.ProcessUserData(ctx, model.ProcessRequest{
		RecordID:  record.ID,
		UserID:    record.UserID,
		Email:     record.Email,
		StoreID:   record.StoreID,
		DataType:  record.DataType,
		Entries:   record.Entries,
		Timestamp: record.Timestamp,
	})
	if err != nil {
		s.logger.Warn("Ingestion service: AI processing failed", "record_id", record.ID, "error", err)
		metrics.AIProcessing.WithLabelValues("failed").Inc()
		return s.finish(ctx, record, model.StatusFailed)
	}

	if err := s.cache.Set(ctx, key, record.ID.String(), cache.TTLAIRequest); err != nil {
		s.logger.Warn("Ingestion service: cache write failed", "key", key, "error", err)
	}
	metrics.AIProcessing.WithLabelValues("processed").Inc()

	return s.finish(ctx, record, model.StatusProcessed)
}

func (s *Ingestion) finish(ctx context.Context, record model.UserData, status model.ProcessedStatus) model.SubmitResult {
	if err := s.dataStore.UpdateStatus(ctx, record.ID, status); err != nil {
		s.logger.Error("Ingestion service: failed to update status", "record_id", record.ID, "status", status, "error", err)
	}

	result := model.SubmitResult{RecordID: record.ID, Status: status, Message: msgAccepted}
	if status == model.StatusFailed {
		result.Message = msgDelayed
		result.RetryScheduled = true
	}
	return result
}

// normalizeEntries fills defaults and normalizes categories on a copy of entries.
func normalizeEntries(entries []model.DataEntry, now time.Time) []model.DataEntry {
	out := make([]model.DataEntry, len(entries))
	for i, entry := range entries {
		if entry.Timestamp.IsZero() {
			entry.Timestamp = now
		}
		if entry.Category != "" {
			entry.Category = taxonomy.Normalize(entry.Category)
		}

		items := make([]model.PurchaseItem, len(entry.Items))
		for j, item := range entry.Items {
			if item.Quantity == 0 {
				item.Quantity = 1
			}
			item.Category = taxonomy.Normalize(item.Category)
			items[j] = item
		}
		if entry.Items != nil {
			entry.Items = items
		}

		out[i] = entry
	}
	return out
}

// requestFingerprint identifies a submission by its store, user, type and
// entries as they were received.
func requestFingerprint(storeID uuid.UUID, params model.SubmitUserDataParams) (string, error) {
	payload, err := json.Marshal(struct {
		StoreID  uuid.UUID         `json:"storeId"`
		Email    string            `json:"email"`
		DataType model.DataType    `json:"dataType"`
		Entries  []model.DataEntry `json:"entries"`
	}{
		StoreID:  storeID,
		Email:    strings.ToLower(params.Email),
		DataType: params.DataType,
		Entries:  params.Entries,
	})
	if err != nil {
		return "", err
	}
	return cache.Fingerprint(string(payload)), nil
}
