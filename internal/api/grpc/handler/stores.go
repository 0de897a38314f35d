package handler

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/tapiro"
	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// maxMediaBytes keeps media responses under the default gRPC message limit.
const maxMediaBytes = 3 << 20

// StoreService defines profile operations of stores.
type StoreService interface {
	Register(ctx context.Context, identity model.Identity, params model.RegisterStoreParams) (model.Store, error)
	Get(ctx context.Context, identity model.Identity) (model.Store, error)
	Update(ctx context.Context, identity model.Identity, params model.UpdateStoreParams) (model.Store, error)
	Delete(ctx context.Context, identity model.Identity) error
}

// APIKeyService defines API key management for store owners.
type APIKeyService interface {
	Issue(ctx context.Context, identity model.Identity, name string) (model.IssuedAPIKey, error)
	List(ctx context.Context, identity model.Identity) ([]model.APIKey, error)
	Revoke(ctx context.Context, identity model.Identity, keyID uuid.UUID) (model.APIKey, error)
	Usage(ctx context.Context, identity model.Identity, keyID uuid.UUID, from, to time.Time) (model.UsageSummary, error)
}

// AdService defines campaign management for store owners.
type AdService interface {
	Create(ctx context.Context, identity model.Identity, params model.CreateAdParams) (model.Advertisement, error)
	List(ctx context.Context, identity model.Identity) ([]model.Advertisement, error)
	Delete(ctx context.Context, identity model.Identity, adID uuid.UUID) error
	Media(ctx context.Context, identity model.Identity, adID uuid.UUID) (io.ReadCloser, error)
}

// Stores handles the tapiro.Stores service.
type Stores struct {
	base
	storeService  StoreService
	apiKeyService APIKeyService
	adService     AdService
}

var _ tapiro.StoresServer = (*Stores)(nil)

// NewStores creates a new Stores handler.
func NewStores(
	storeService StoreService,
	apiKeyService APIKeyService,
	adService AdService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	devMode bool,
) *Stores {
	return &Stores{
		base:          base{contextManager: contextManager, logger: logger, devMode: devMode},
		storeService:  storeService,
		apiKeyService: apiKeyService,
		adService:     adService,
	}
}

func (h *Stores) RegisterStore(ctx context.Context, req *model.RegisterStoreParams) (*model.Store, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Stores handler: processing register request", "sub", identity.Subject)

	store, err := h.storeService.Register(ctx, identity, *req)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &store, nil
}

func (h *Stores) GetStore(ctx context.Context, _ *tapiro.Empty) (*model.Store, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	store, err := h.storeService.Get(ctx, identity)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &store, nil
}

func (h *Stores) UpdateStore(ctx context.Context, req *model.UpdateStoreParams) (*model.Store, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	store, err := h.storeService.Update(ctx, identity, *req)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &store, nil
}

func (h *Stores) DeleteStore(ctx context.Context, _ *tapiro.Empty) (*tapiro.Empty, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.storeService.Delete(ctx, identity); err != nil {
		return nil, h.handleError(ctx, err)
	}

	h.logger.Info("Stores handler: store deleted", "sub", identity.Subject)

	return &tapiro.Empty{}, nil
}

func (h *Stores) CreateAPIKey(ctx context.Context, req *tapiro.CreateAPIKeyRequest) (*model.IssuedAPIKey, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	issued, err := h.apiKeyService.Issue(ctx, identity, req.Name)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &issued, nil
}

func (h *Stores) ListAPIKeys(ctx context.Context, _ *tapiro.Empty) (*tapiro.APIKeysResponse, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	keys, err := h.apiKeyService.List(ctx, identity)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &tapiro.APIKeysResponse{Keys: keys}, nil
}

func (h *Stores) RevokeAPIKey(ctx context.Context, req *tapiro.APIKeyRequest) (*model.APIKey, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	keyID, err := parseID("keyId", req.KeyID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	key, err := h.apiKeyService.Revoke(ctx, identity, keyID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &key, nil
}

func (h *Stores) GetAPIKeyUsage(ctx context.Context, req *tapiro.UsageRequest) (*model.UsageSummary, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	keyID, err := parseID("keyId", req.KeyID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	summary, err := h.apiKeyService.Usage(ctx, identity, keyID, req.From, req.To)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &summary, nil
}

func (h *Stores) CreateAd(ctx context.Context, req *tapiro.CreateAdRequest) (*model.Advertisement, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	params := model.CreateAdParams{
		Title:            req.Title,
		Description:      req.Description,
		TargetCategories: req.TargetCategories,
		Start:            req.Start,
		End:              req.End,
	}
	if len(req.Media) > 0 {
		if req.MediaContentType == "" {
			return nil, h.handleError(ctx, apierror.BadRequest("mediaContentType is required with media"))
		}
		params.Media = bytes.NewReader(req.Media)
		params.MediaSize = int64(len(req.Media))
		params.MediaContentType = req.MediaContentType
	}

	ad, err := h.adService.Create(ctx, identity, params)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &ad, nil
}

func (h *Stores) ListAds(ctx context.Context, _ *tapiro.Empty) (*tapiro.AdsResponse, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	ads, err := h.adService.List(ctx, identity)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &tapiro.AdsResponse{Ads: ads}, nil
}

func (h *Stores) DeleteAd(ctx context.Context, req *tapiro.AdRequest) (*tapiro.Empty, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	adID, err := parseID("adId", req.AdID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	if err := h.adService.Delete(ctx, identity, adID); err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &tapiro.Empty{}, nil
}

func (h *Stores) GetAdMedia(ctx context.Context, req *tapiro.AdRequest) (*tapiro.MediaResponse, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	adID, err := parseID("adId", req.AdID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	reader, err := h.adService.Media(ctx, identity, adID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxMediaBytes+1))
	if err != nil {
		h.logger.Error("Stores handler: failed to read media", "ad_id", adID, "error", err)
		return nil, h.handleError(ctx, apierror.Internal(err))
	}
	if len(data) > maxMediaBytes {
		return nil, h.handleError(ctx, apierror.BadRequest("Media is too large to stream"))
	}

	return &tapiro.MediaResponse{Data: data}, nil
}
