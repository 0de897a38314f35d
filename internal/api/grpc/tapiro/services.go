package tapiro

import (
	"context"

	"google.golang.org/grpc"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// Service names as they appear in full method names.
const (
	UsersService           = "tapiro.Users"
	StoresService          = "tapiro.Stores"
	StoreOperationsService = "tapiro.StoreOperations"
	HealthService          = "tapiro.Health"
)

// FullMethod returns the full method name of method on service.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// UsersServer is the bearer-authenticated API of shoppers.
type UsersServer interface {
	RegisterUser(context.Context, *model.RegisterUserParams) (*model.User, error)
	GetProfile(context.Context, *Empty) (*model.User, error)
	UpdateProfile(context.Context, *model.UpdateUserParams) (*model.User, error)
	DeleteProfile(context.Context, *Empty) (*Empty, error)
	GetPreferences(context.Context, *Empty) (*model.UserPreferences, error)
	UpdatePreferences(context.Context, *UpdatePreferencesRequest) (*model.UserPreferences, error)
	UpdatePrivacy(context.Context, *UpdatePrivacyRequest) (*model.PrivacySettings, error)
	OptIn(context.Context, *StoreRequest) (*model.PrivacySettings, error)
	OptOut(context.Context, *StoreRequest) (*model.PrivacySettings, error)
	GetPersonalizedAds(context.Context, *PersonalizedAdsRequest) (*AdsResponse, error)
}

// StoresServer is the bearer-authenticated API of store owners.
type StoresServer interface {
	RegisterStore(context.Context, *model.RegisterStoreParams) (*model.Store, error)
	GetStore(context.Context, *Empty) (*model.Store, error)
	UpdateStore(context.Context, *model.UpdateStoreParams) (*model.Store, error)
	DeleteStore(context.Context, *Empty) (*Empty, error)
	CreateAPIKey(context.Context, *CreateAPIKeyRequest) (*model.IssuedAPIKey, error)
	ListAPIKeys(context.Context, *Empty) (*APIKeysResponse, error)
	RevokeAPIKey(context.Context, *APIKeyRequest) (*model.APIKey, error)
	GetAPIKeyUsage(context.Context, *UsageRequest) (*model.UsageSummary, error)
	CreateAd(context.Context, *CreateAdRequest) (*model.Advertisement, error)
	ListAds(context.Context, *Empty) (*AdsResponse, error)
	DeleteAd(context.Context, *AdRequest) (*Empty, error)
	GetAdMedia(context.Context, *AdRequest) (*MediaResponse, error)
}

// StoreOperationsServer is the API-key-authenticated API stores integrate with.
type StoreOperationsServer interface {
	GetUserPreferences(context.Context, *UserLookupRequest) (*model.StorePreferences, error)
	SubmitUserData(context.Context, *model.SubmitUserDataParams) (*model.SubmitResult, error)
	GetScanAds(context.Context, *ScanAdsRequest) (*AdsResponse, error)
}

// HealthServer answers unauthenticated liveness checks.
type HealthServer interface {
	Check(context.Context, *Empty) (*HealthResponse, error)
}

// unary builds a method descriptor that decodes Req and dispatches to call
// through the server's interceptor chain.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(service, method)

	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var usersServiceDesc = grpc.ServiceDesc{
	ServiceName: UsersService,
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(UsersService, "RegisterUser", UsersServer.RegisterUser),
		unary(UsersService, "GetProfile", UsersServer.GetProfile),
		unary(UsersService, "UpdateProfile", UsersServer.UpdateProfile),
		unary(UsersService, "DeleteProfile", UsersServer.DeleteProfile),
		unary(UsersService, "GetPreferences", UsersServer.GetPreferences),
		unary(UsersService, "UpdatePreferences", UsersServer.UpdatePreferences),
		unary(UsersService, "UpdatePrivacy", UsersServer.UpdatePrivacy),
		unary(UsersService, "OptIn", UsersServer.OptIn),
		unary(UsersService, "OptOut", UsersServer.OptOut),
		unary(UsersService, "GetPersonalizedAds", UsersServer.GetPersonalizedAds),
	},
	Metadata: "tapiro/users",
}

var storesServiceDesc = grpc.ServiceDesc{
	ServiceName: StoresService,
	HandlerType: (*StoresServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(StoresService, "RegisterStore", StoresServer.RegisterStore),
		unary(StoresService, "GetStore", StoresServer.GetStore),
		unary(StoresService, "UpdateStore", StoresServer.UpdateStore),
		unary(StoresService, "DeleteStore", StoresServer.DeleteStore),
		unary(StoresService, "CreateAPIKey", StoresServer.CreateAPIKey),
		unary(StoresService, "ListAPIKeys", StoresServer.ListAPIKeys),
		unary(StoresService, "RevokeAPIKey", StoresServer.RevokeAPIKey),
		unary(StoresService, "GetAPIKeyUsage", StoresServer.GetAPIKeyUsage),
		unary(StoresService, "CreateAd", StoresServer.CreateAd),
		unary(StoresService, "ListAds", StoresServer.ListAds),
		unary(StoresService, "DeleteAd", StoresServer.DeleteAd),
		unary(StoresService, "GetAdMedia", StoresServer.GetAdMedia),
	},
	Metadata: "tapiro/stores",
}

var storeOperationsServiceDesc = grpc.ServiceDesc{
	ServiceName: StoreOperationsService,
	HandlerType: (*StoreOperationsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(StoreOperationsService, "GetUserPreferences", StoreOperationsServer.GetUserPreferences),
		unary(StoreOperationsService, "SubmitUserData", StoreOperationsServer.SubmitUserData),
		unary(StoreOperationsService, "GetScanAds", StoreOperationsServer.GetScanAds),
	},
	Metadata: "tapiro/store_operations",
}

var healthServiceDesc = grpc.ServiceDesc{
	ServiceName: HealthService,
	HandlerType: (*HealthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(HealthService, "Check", HealthServer.Check),
	},
	Metadata: "tapiro/health",
}

func RegisterUsersServer(s grpc.ServiceRegistrar, srv UsersServer) {
	s.RegisterService(&usersServiceDesc, srv)
}

func RegisterStoresServer(s grpc.ServiceRegistrar, srv StoresServer) {
	s.RegisterService(&storesServiceDesc, srv)
}

func RegisterStoreOperationsServer(s grpc.ServiceRegistrar, srv StoreOperationsServer) {
	s.RegisterService(&storeOperationsServiceDesc, srv)
}

func RegisterHealthServer(s grpc.ServiceRegistrar, srv HealthServer) {
	s.RegisterService(&healthServiceDesc, srv)
}
