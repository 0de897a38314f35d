package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByAuthID(ctx context.Context, authID string) (model.User, error) {
	args := m.Called(ctx, authID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) UsernameTaken(ctx context.Context, username string, exceptAuthID string) (bool, error) {
	args := m.Called(ctx, username, exceptAuthID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, authID string, params model.UpdateUserParams) (model.User, error) {
	args := m.Called(ctx, authID, params)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) UpdatePreferences(ctx context.Context, authID string, preferences []model.Preference) (model.User, error) {
	args := m.Called(ctx, authID, preferences)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) UpdatePrivacy(ctx context.Context, authID string, consent, anonymize bool) (model.User, error) {
	args := m.Called(ctx, authID, consent, anonymize)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) OptIn(ctx context.Context, userID uuid.UUID, storeID string) (model.User, error) {
	args := m.Called(ctx, userID, storeID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) OptOut(ctx context.Context, userID uuid.UUID, storeID string) (model.User, error) {
	args := m.Called(ctx, userID, storeID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) AutoOptIn(ctx context.Context, userID uuid.UUID, storeID string) (bool, error) {
	args := m.Called(ctx, userID, storeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) RemoveStore(ctx context.Context, storeID string) ([]model.User, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, authID string) (model.User, error) {
	args := m.Called(ctx, authID)
	return args.Get(0).(model.User), args.Error(1)
}

// MockStoreStore mocks the StoreStore interface
type MockStoreStore struct {
	mock.Mock
}

func (m *MockStoreStore) Create(ctx context.Context, store model.Store) (model.Store, error) {
	args := m.Called(ctx, store)
	return args.Get(0).(model.Store), args.Error(1)
}

func (m *MockStoreStore) GetByID(ctx context.Context, id uuid.UUID) (model.Store, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Store), args.Error(1)
}

func (m *MockStoreStore) GetByAuthID(ctx context.Context, authID string) (model.Store, error) {
	args := m.Called(ctx, authID)
	return args.Get(0).(model.Store), args.Error(1)
}

func (m *MockStoreStore) Update(ctx context.Context, authID string, params model.UpdateStoreParams) (model.Store, error) {
	args := m.Called(ctx, authID, params)
	return args.Get(0).(model.Store), args.Error(1)
}

func (m *MockStoreStore) Delete(ctx context.Context, authID string) (model.Store, error) {
	args := m.Called(ctx, authID)
	return args.Get(0).(model.Store), args.Error(1)
}

// MockAPIKeyStore mocks the APIKeyStore interface
type MockAPIKeyStore struct {
	mock.Mock
}

func (m *MockAPIKeyStore) Create(ctx context.Context, key model.APIKey) (model.APIKey, error) {
	args := m.Called(ctx, key)
	if fn, ok := args.Get(0).(func(context.Context, model.APIKey) model.APIKey); ok {
		return fn(ctx, key), args.Error(1)
	}
	return args.Get(0).(model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) GetByID(ctx context.Context, storeID, keyID uuid.UUID) (model.APIKey, error) {
	args := m.Called(ctx, storeID, keyID)
	return args.Get(0).(model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) GetByStoreAndPrefix(ctx context.Context, storeID uuid.UUID, prefix string) (model.APIKey, error) {
	args := m.Called(ctx, storeID, prefix)
	return args.Get(0).(model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.APIKey, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) FindActiveByPrefix(ctx context.Context, prefix string) ([]model.APIKey, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) Revoke(ctx context.Context, storeID, keyID uuid.UUID) (model.APIKey, error) {
	args := m.Called(ctx, storeID, keyID)
	return args.Get(0).(model.APIKey), args.Error(1)
}

func (m *MockAPIKeyStore) TouchLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, keyID, at)
	return args.Error(0)
}

// MockUsageStore mocks the UsageStore interface
type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) Insert(ctx context.Context, usage model.APIUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *MockUsageStore) ListByKey(ctx context.Context, keyID uuid.UUID, from, to time.Time) ([]model.APIUsage, error) {
	args := m.Called(ctx, keyID, from, to)
	return args.Get(0).([]model.APIUsage), args.Error(1)
}

// MockUsageTracker mocks the UsageTracker interface
type MockUsageTracker struct {
	mock.Mock
}

func (m *MockUsageTracker) Track(usage model.APIUsage) {
	m.Called(usage)
}

// MockUserDataStore mocks the UserDataStore interface
type MockUserDataStore struct {
	mock.Mock
}

func (m *MockUserDataStore) Create(ctx context.Context, record model.UserData) (model.UserData, error) {
	args := m.Called(ctx, record)
	if fn, ok := args.Get(0).(func(context.Context, model.UserData) model.UserData); ok {
		return fn(ctx, record), args.Error(1)
	}
	return args.Get(0).(model.UserData), args.Error(1)
}

func (m *MockUserDataStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessedStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserDataStore) ListPurchasesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.UserData, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]model.UserData), args.Error(1)
}

// MockAdvertisementStore mocks the AdvertisementStore interface
type MockAdvertisementStore struct {
	mock.Mock
}

func (m *MockAdvertisementStore) Create(ctx context.Context, ad model.Advertisement) (model.Advertisement, error) {
	args := m.Called(ctx, ad)
	if fn, ok := args.Get(0).(func(context.Context, model.Advertisement) model.Advertisement); ok {
		return fn(ctx, ad), args.Error(1)
	}
	return args.Get(0).(model.Advertisement), args.Error(1)
}

func (m *MockAdvertisementStore) GetByID(ctx context.Context, storeID, id uuid.UUID) (model.Advertisement, error) {
	args := m.Called(ctx, storeID, id)
	return args.Get(0).(model.Advertisement), args.Error(1)
}

func (m *MockAdvertisementStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.Advertisement, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]model.Advertisement), args.Error(1)
}

func (m *MockAdvertisementStore) ListActive(ctx context.Context, now time.Time) ([]model.Advertisement, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]model.Advertisement), args.Error(1)
}

func (m *MockAdvertisementStore) ListActiveByStore(ctx context.Context, storeID uuid.UUID, now time.Time) ([]model.Advertisement, error) {
	args := m.Called(ctx, storeID, now)
	return args.Get(0).([]model.Advertisement), args.Error(1)
}

func (m *MockAdvertisementStore) Delete(ctx context.Context, storeID, id uuid.UUID) (model.Advertisement, error) {
	args := m.Called(ctx, storeID, id)
	return args.Get(0).(model.Advertisement), args.Error(1)
}

// MockOracle mocks the TaxonomyOracle interface
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) GetCategoryAttributes(ctx context.Context, categoryID string) (map[string][]string, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockOracle) ValidateAttributes(ctx context.Context, category string, attributes map[string]string) (model.ValidationResult, error) {
	args := m.Called(ctx, category, attributes)
	return args.Get(0).(model.ValidationResult), args.Error(1)
}

func (m *MockOracle) ValidateBatch(ctx context.Context, items []model.ValidationItem) (map[string]model.ValidationResult, error) {
	args := m.Called(ctx, items)
	return args.Get(0).(map[string]model.ValidationResult), args.Error(1)
}

// MockProcessor mocks the Processor interface
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessUserData(ctx context.Context, req model.ProcessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockVerifier mocks the IdentityVerifier interface
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (model.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Identity), args.Error(1)
}

// MockScopeResolver mocks the ScopeResolver interface
type MockScopeResolver struct {
	mock.Mock
}

func (m *MockScopeResolver) Scopes(roles []string) ([]string, error) {
	args := m.Called(roles)
	return args.Get(0).([]string), args.Error(1)
}
