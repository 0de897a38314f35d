package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/codec"
	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/handler"
	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/middleware"
	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/tapiro"
	"github.com/CDevmina/Tapiro-sub000/internal/authz"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/service"
)

// Services groups the domain services exposed over gRPC.
type Services struct {
	Identity  *service.Identity
	Users     *service.Users
	Consent   *service.Consent
	Stores    *service.Stores
	APIKeys   *service.APIKeys
	Ads       *service.Ads
	Ingestion *service.Ingestion
}

// Config tunes the router.
type Config struct {
	DevMode      bool
	RateLimitRPS float64
	RateBurst    int
	Version      string
}

// Router represents a gRPC router for the Tapiro services.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	services       Services
	contextManager model.ContextManager
	logger         *logger.Logger
	config         Config
}

// New creates new gRPC Router instance.
func New(
	services Services,
	contextManager model.ContextManager,
	logger *logger.Logger,
	config Config,
) *Router {
	return &Router{
		services:       services,
		contextManager: contextManager,
		logger:         logger,
		config:         config,
	}
}

// MethodScopes maps every bearer-authenticated method to the scope it requires.
func MethodScopes() map[string]string {
	scopes := make(map[string]string)

	users := map[string]string{
		"RegisterUser":       authz.ScopeUserWrite,
		"GetProfile":         authz.ScopeUserRead,
		"UpdateProfile":      authz.ScopeUserWrite,
		"DeleteProfile":      authz.ScopeUserWrite,
		"GetPreferences":     authz.ScopeUserRead,
		"UpdatePreferences":  authz.ScopeUserWrite,
		"UpdatePrivacy":      authz.ScopeUserWrite,
		"OptIn":              authz.ScopeUserWrite,
		"OptOut":             authz.ScopeUserWrite,
		"GetPersonalizedAds": authz.ScopeUserRead,
	}
	for method, scope := range users {
		scopes[tapiro.FullMethod(tapiro.UsersService, method)] = scope
	}

	stores := map[string]string{
		"RegisterStore":  authz.ScopeStoreWrite,
		"GetStore":       authz.ScopeStoreRead,
		"UpdateStore":    authz.ScopeStoreWrite,
		"DeleteStore":    authz.ScopeStoreWrite,
		"CreateAPIKey":   authz.ScopeStoreWrite,
		"ListAPIKeys":    authz.ScopeStoreRead,
		"RevokeAPIKey":   authz.ScopeStoreWrite,
		"GetAPIKeyUsage": authz.ScopeStoreRead,
		"CreateAd":       authz.ScopeStoreWrite,
		"ListAds":        authz.ScopeStoreRead,
		"DeleteAd":       authz.ScopeStoreWrite,
		"GetAdMedia":     authz.ScopeStoreRead,
	}
	for method, scope := range stores {
		scopes[tapiro.FullMethod(tapiro.StoresService, method)] = scope
	}

	return scopes
}

func inService(c interceptors.CallMeta, services ...string) bool {
	for _, service := range services {
		if strings.HasPrefix(c.FullMethod(), "/"+service+"/") {
			return true
		}
	}
	return false
}

func bearerMethod(_ context.Context, c interceptors.CallMeta) bool {
	return inService(c, tapiro.UsersService, tapiro.StoresService)
}

func apiKeyMethod(_ context.Context, c interceptors.CallMeta) bool {
	return inService(c, tapiro.StoreOperationsService)
}

// Register registers all gRPC services and middleware.
// Calls are logged first, then authenticated by bearer token or API key
// depending on the service.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Identity, r.contextManager, r.logger, r.config.DevMode)
	authorize := middleware.NewAuthorize(MethodScopes(), r.contextManager, r.logger, r.config.DevMode)
	apiKey := middleware.NewAPIKey(
		r.services.APIKeys,
		r.contextManager,
		r.logger,
		r.config.RateLimitRPS,
		r.config.RateBurst,
		r.config.DevMode,
	)

	s := grpc.NewServer(
		grpc.ForceServerCodec(codec.JSON{}),
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(bearerMethod),
			),
			selector.UnaryServerInterceptor(
				authorize.HandleGRPC,
				selector.MatchFunc(bearerMethod),
			),
			selector.UnaryServerInterceptor(
				apiKey.HandleGRPC,
				selector.MatchFunc(apiKeyMethod),
			),
		),
	)

	r.registerUserRoutes(s)
	r.registerStoreRoutes(s)
	r.registerOperationRoutes(s)
	tapiro.RegisterHealthServer(s, handler.NewHealth(r.config.Version))

	return s
}

func (r *Router) registerUserRoutes(server *grpc.Server) {
	usersHandler := handler.NewUsers(
		r.services.Users,
		r.services.Consent,
		r.services.Ads,
		r.contextManager,
		r.logger,
		r.config.DevMode,
	)
	tapiro.RegisterUsersServer(server, usersHandler)
}

func (r *Router) registerStoreRoutes(server *grpc.Server) {
	storesHandler := handler.NewStores(
		r.services.Stores,
		r.services.APIKeys,
		r.services.Ads,
		r.contextManager,
		r.logger,
		r.config.DevMode,
	)
	tapiro.RegisterStoresServer(server, storesHandler)
}

func (r *Router) registerOperationRoutes(server *grpc.Server) {
	operationsHandler := handler.NewStoreOperations(
		r.services.Consent,
		r.services.Ingestion,
		r.services.Ads,
		r.contextManager,
		r.logger,
		r.config.DevMode,
	)
	tapiro.RegisterStoreOperationsServer(server, operationsHandler)
}
