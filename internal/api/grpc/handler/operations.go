package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/tapiro"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// StorePreferenceReader returns the preferences a store may see.
type StorePreferenceReader interface {
	GetPreferencesForStore(ctx context.Context, storeID uuid.UUID, email string) (model.StorePreferences, error)
}

// IngestionService accepts interaction data from stores.
type IngestionService interface {
	Submit(ctx context.Context, storeID uuid.UUID, params model.SubmitUserDataParams) (model.SubmitResult, error)
}

// ScanAdService ranks a store's ads for a scanned shopper.
type ScanAdService interface {
	ForScan(ctx context.Context, storeID uuid.UUID, email string, limit int) ([]model.Advertisement, error)
}

// StoreOperations handles the tapiro.StoreOperations service. Callers are
// stores authenticated by API key.
type StoreOperations struct {
	base
	preferences StorePreferenceReader
	ingestion   IngestionService
	ads         ScanAdService
}

var _ tapiro.StoreOperationsServer = (*StoreOperations)(nil)

// NewStoreOperations creates a new StoreOperations handler.
func NewStoreOperations(
	preferences StorePreferenceReader,
	ingestion IngestionService,
	ads ScanAdService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	devMode bool,
) *StoreOperations {
	return &StoreOperations{
		base:        base{contextManager: contextManager, logger: logger, devMode: devMode},
		preferences: preferences,
		ingestion:   ingestion,
		ads:         ads,
	}
}

func (h *StoreOperations) GetUserPreferences(ctx context.Context, req *tapiro.UserLookupRequest) (*model.StorePreferences, error) {
	principal, err := h.principal(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := h.preferences.GetPreferencesForStore(ctx, principal.StoreID, req.Email)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &prefs, nil
}

func (h *StoreOperations) SubmitUserData(ctx context.Context, req *model.SubmitUserDataParams) (*model.SubmitResult, error) {
	principal, err := h.principal(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("StoreOperations handler: processing submit request",
		"store_id", principal.StoreID,
		"data_type", req.DataType,
		"entries", len(req.Entries))

	result, err := h.ingestion.Submit(ctx, principal.StoreID, *req)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	h.logger.Info("StoreOperations handler: user data accepted",
		"store_id", principal.StoreID,
		"record_id", result.RecordID,
		"status", result.Status)

	return &result, nil
}

func (h *StoreOperations) GetScanAds(ctx context.Context, req *tapiro.ScanAdsRequest) (*tapiro.AdsResponse, error) {
	principal, err := h.principal(ctx)
	if err != nil {
		return nil, err
	}

	ads, err := h.ads.ForScan(ctx, principal.StoreID, req.Email, req.Limit)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &tapiro.AdsResponse{Ads: ads}, nil
}
