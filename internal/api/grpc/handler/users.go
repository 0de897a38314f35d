package handler

import (
	"context"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/tapiro"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// UserService defines profile operations of shoppers.
type UserService interface {
	Register(ctx context.Context, identity model.Identity, params model.RegisterUserParams) (model.User, error)
	Get(ctx context.Context, identity model.Identity) (model.User, error)
	Update(ctx context.Context, identity model.Identity, params model.UpdateUserParams) (model.User, error)
	Delete(ctx context.Context, identity model.Identity) error
}

// ConsentService defines preference and consent operations.
type ConsentService interface {
	GetOwnPreferences(ctx context.Context, identity model.Identity) (model.UserPreferences, error)
	UpdatePreferences(ctx context.Context, identity model.Identity, prefs []model.Preference) (model.UserPreferences, error)
	UpdatePrivacy(ctx context.Context, identity model.Identity, consent, anonymize bool) (model.PrivacySettings, error)
	OptIn(ctx context.Context, identity model.Identity, storeID string) (model.PrivacySettings, error)
	OptOut(ctx context.Context, identity model.Identity, storeID string) (model.PrivacySettings, error)
}

// PersonalizedAdService ranks advertisements for a shopper.
type PersonalizedAdService interface {
	Personalized(ctx context.Context, identity model.Identity, limit int) ([]model.Advertisement, error)
}

// Users handles the tapiro.Users service.
type Users struct {
	base
	userService    UserService
	consentService ConsentService
	adService      PersonalizedAdService
}

var _ tapiro.UsersServer = (*Users)(nil)

// NewUsers creates a new Users handler.
func NewUsers(
	userService UserService,
	consentService ConsentService,
	adService PersonalizedAdService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	devMode bool,
) *Users {
	return &Users{
		base:           base{contextManager: contextManager, logger: logger, devMode: devMode},
		userService:    userService,
		consentService: consentService,
		adService:      adService,
	}
}

func (h *Users) RegisterUser(ctx context.Context, req *model.RegisterUserParams) (*model.User, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Users handler: processing register request", "sub", identity.Subject)

	user, err := h.userService.Register(ctx, identity, *req)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &user, nil
}

func (h *Users) GetProfile(ctx context.Context, _ *tapiro.Empty) (*model.User, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.Get(ctx, identity)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &user, nil
}

func (h *Users) UpdateProfile(ctx context.Context, req *model.UpdateUserParams) (*model.User, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.Update(ctx, identity, *req)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &user, nil
}

func (h *Users) DeleteProfile(ctx context.Context, _ *tapiro.Empty) (*tapiro.Empty, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.userService.Delete(ctx, identity); err != nil {
		return nil, h.handleError(ctx, err)
	}

	h.logger.Info("Users handler: profile deleted", "sub", identity.Subject)

	return &tapiro.Empty{}, nil
}

func (h *Users) GetPreferences(ctx context.Context, _ *tapiro.Empty) (*model.UserPreferences, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := h.consentService.GetOwnPreferences(ctx, identity)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &prefs, nil
}

func (h *Users) UpdatePreferences(ctx context.Context, req *tapiro.UpdatePreferencesRequest) (*model.UserPreferences, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Users handler: processing update preferences request",
		"sub", identity.Subject,
		"count", len(req.Preferences))

	prefs, err := h.consentService.UpdatePreferences(ctx, identity, req.Preferences)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &prefs, nil
}

func (h *Users) UpdatePrivacy(ctx context.Context, req *tapiro.UpdatePrivacyRequest) (*model.PrivacySettings, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	privacy, err := h.consentService.UpdatePrivacy(ctx, identity, req.DataSharingConsent, req.AnonymizeData)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &privacy, nil
}

func (h *Users) OptIn(ctx context.Context, req *tapiro.StoreRequest) (*model.PrivacySettings, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	privacy, err := h.consentService.OptIn(ctx, identity, req.StoreID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &privacy, nil
}

func (h *Users) OptOut(ctx context.Context, req *tapiro.StoreRequest) (*model.PrivacySettings, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	privacy, err := h.consentService.OptOut(ctx, identity, req.StoreID)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &privacy, nil
}

func (h *Users) GetPersonalizedAds(ctx context.Context, req *tapiro.PersonalizedAdsRequest) (*tapiro.AdsResponse, error) {
	identity, err := h.identity(ctx)
	if err != nil {
		return nil, err
	}

	ads, err := h.adService.Personalized(ctx, identity, req.Limit)
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return &tapiro.AdsResponse{Ads: ads}, nil
}
