package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

var adsNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type adsFixture struct {
	stores  *MockStoreStore
	users   *MockUserStore
	ads     *MockAdvertisementStore
	data    *MockUserDataStore
	consent *MockConsentChecker
	storage *MockStorage
	svc     *Ads
}

func newAdsFixture(t *testing.T) *adsFixture {
	f := &adsFixture{
		stores:  &MockStoreStore{},
		users:   &MockUserStore{},
		ads:     &MockAdvertisementStore{},
		data:    &MockUserDataStore{},
		consent: &MockConsentChecker{},
		storage: &MockStorage{},
	}
	f.svc = NewAds(f.stores, f.users, f.ads, f.data, f.consent, f.storage, testutil.MakeCache(t), testutil.MakeNoopLogger())
	f.svc.now = func() time.Time { return adsNow }
	return f
}

func (f *adsFixture) assertExpectations(t *testing.T) {
	f.stores.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.ads.AssertExpectations(t)
	f.data.AssertExpectations(t)
	f.consent.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func campaign(title string, days int, categories ...string) model.Advertisement {
	return model.Advertisement{
		ID:               uuid.New(),
		StoreID:          testStoreID,
		Title:            title,
		TargetCategories: categories,
		Validity:         model.Validity{Start: adsNow.AddDate(0, 0, -1), End: adsNow.AddDate(0, 0, days)},
	}
}

func adTitles(ads []model.Advertisement) []string {
	out := make([]string, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.Title)
	}
	return out
}

func storedAd(_ context.Context, ad model.Advertisement) model.Advertisement {
	return ad
}

func TestAds_Create(t *testing.T) {
	params := func() model.CreateAdParams {
		return model.CreateAdParams{
			Title:            "Summer sale",
			TargetCategories: []string{"Electronics", "Home Garden"},
			Start:            adsNow,
			End:              adsNow.AddDate(0, 1, 0),
		}
	}

	t.Run("uploads media under the ad key", func(t *testing.T) {
		f := newAdsFixture(t)
		p := params()
		p.Media = bytes.NewReader([]byte("png"))
		p.MediaSize = 3
		p.MediaContentType = "image/png"

		var uploaded string
		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			uploaded = key
			return strings.HasPrefix(key, "ads/"+testStoreID.String()+"/")
		}), p.Media, int64(3), "image/png").Return(nil)
		f.ads.On("Create", mock.Anything, mock.Anything).Return(storedAd, nil)

		ad, err := f.svc.Create(context.Background(), storeIdentity, p)
		require.NoError(t, err)

		assert.Equal(t, "ads/"+testStoreID.String()+"/"+ad.ID.String(), uploaded)
		assert.Equal(t, uploaded, ad.MediaURL)
		assert.Equal(t, []string{"electronics", "home_garden"}, ad.TargetCategories)

		f.assertExpectations(t)
	})

	t.Run("removes media when the ad is not stored", func(t *testing.T) {
		f := newAdsFixture(t)
		p := params()
		p.Media = bytes.NewReader([]byte("png"))

		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.ads.On("Create", mock.Anything, mock.Anything).Return(model.Advertisement{}, errors.New("insert failed"))
		f.storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Create(context.Background(), storeIdentity, p)
		assertAPIError(t, err, 500, "")

		f.assertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newAdsFixture(t)
		p := params()
		p.TargetCategories = []string{"quantum widgets"}

		_, err := f.svc.Create(context.Background(), storeIdentity, p)
		assertAPIError(t, err, 400, "Invalid category: quantum widgets")
	})

	t.Run("window ends before it starts", func(t *testing.T) {
		f := newAdsFixture(t)
		p := params()
		p.End = p.Start.Add(-time.Hour)

		_, err := f.svc.Create(context.Background(), storeIdentity, p)
		assertAPIError(t, err, 400, "")
	})
}

func TestAds_Personalized(t *testing.T) {
	f := newAdsFixture(t)
	user := testUser(model.PrivacySettings{DataSharingConsent: true})

	ads := []model.Advertisement{
		campaign("garden", 10, "home_garden"),
		campaign("phones", 10, "electronics"),
		campaign("books", 20, "books"),
	}
	purchases := []model.UserData{{
		DataType: model.DataTypePurchase,
		Entries:  []model.DataEntry{{Items: []model.PurchaseItem{{Name: "Novel", Category: "books"}}}},
	}}

	f.users.On("GetByAuthID", mock.Anything, user.AuthID).Return(user, nil)
	f.ads.On("ListActive", mock.Anything, adsNow).Return(ads, nil).Once()
	f.data.On("ListPurchasesByUser", mock.Anything, testUserID, profilePurchaseLimit).Return(purchases, nil).Once()

	identity := model.Identity{Subject: user.AuthID}

	// electronics: 5 + 1.0, books: 3 + 2.0, garden: 1.0
	ranked, err := f.svc.Personalized(context.Background(), identity, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"phones", "books"}, adTitles(ranked))

	// Served from the cached ranking.
	ranked, err = f.svc.Personalized(context.Background(), identity, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"phones", "books", "garden"}, adTitles(ranked))

	_, err = f.svc.Personalized(context.Background(), identity, -1)
	assertAPIError(t, err, 400, "")

	f.assertExpectations(t)
}

func TestAds_ForScan(t *testing.T) {
	t.Run("ranks the store's ads", func(t *testing.T) {
		f := newAdsFixture(t)
		user := testUser(model.PrivacySettings{DataSharingConsent: true})

		f.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		f.consent.On("EnsureAccess", mock.Anything, user, testStoreID.String()).Return(user, nil)
		f.ads.On("ListActiveByStore", mock.Anything, testStoreID, adsNow).Return([]model.Advertisement{
			campaign("garden", 1, "home_garden"),
			campaign("phones", 1, "electronics"),
		}, nil)
		f.data.On("ListPurchasesByUser", mock.Anything, testUserID, profilePurchaseLimit).Return([]model.UserData{}, nil)

		ranked, err := f.svc.ForScan(context.Background(), testStoreID, user.Email, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"phones"}, adTitles(ranked))

		f.assertExpectations(t)
	})

	t.Run("consent denied", func(t *testing.T) {
		f := newAdsFixture(t)
		user := testUser(model.PrivacySettings{})

		f.users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		f.consent.On("EnsureAccess", mock.Anything, user, testStoreID.String()).
			Return(model.User{}, apierror.Forbidden(msgNoConsent))

		_, err := f.svc.ForScan(context.Background(), testStoreID, user.Email, 5)
		assertAPIError(t, err, 403, msgNoConsent)

		f.assertExpectations(t)
	})
}

func TestAds_DeleteAndMedia(t *testing.T) {
	ad := campaign("phones", 3, "electronics")
	ad.MediaURL = "ads/" + testStoreID.String() + "/" + ad.ID.String()

	t.Run("delete removes media", func(t *testing.T) {
		f := newAdsFixture(t)
		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.ads.On("Delete", mock.Anything, testStoreID, ad.ID).Return(ad, nil)
		f.storage.On("Delete", mock.Anything, ad.MediaURL).Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), storeIdentity, ad.ID))

		f.assertExpectations(t)
	})

	t.Run("delete unknown ad", func(t *testing.T) {
		f := newAdsFixture(t)
		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.ads.On("Delete", mock.Anything, testStoreID, ad.ID).Return(model.Advertisement{}, model.ErrNotFound)

		err := f.svc.Delete(context.Background(), storeIdentity, ad.ID)
		assertAPIError(t, err, 404, msgAdNotFound)
	})

	t.Run("media streams the object", func(t *testing.T) {
		f := newAdsFixture(t)
		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.ads.On("GetByID", mock.Anything, testStoreID, ad.ID).Return(ad, nil)
		f.storage.On("Download", mock.Anything, ad.MediaURL).Return(io.NopCloser(strings.NewReader("png")), nil)

		reader, err := f.svc.Media(context.Background(), storeIdentity, ad.ID)
		require.NoError(t, err)
		defer reader.Close()

		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "png", string(body))
	})

	t.Run("ad without media", func(t *testing.T) {
		f := newAdsFixture(t)
		plain := ad
		plain.MediaURL = ""
		f.stores.On("GetByAuthID", mock.Anything, storeIdentity.Subject).Return(testStore(), nil)
		f.ads.On("GetByID", mock.Anything, testStoreID, ad.ID).Return(plain, nil)

		_, err := f.svc.Media(context.Background(), storeIdentity, ad.ID)
		assertAPIError(t, err, 404, "")
	})
}
