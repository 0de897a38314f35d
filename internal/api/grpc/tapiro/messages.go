// Package tapiro defines the public gRPC services, their messages and their
// service descriptors. Messages travel as JSON (see package codec).
package tapiro

import (
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// Empty is the request or response of calls that carry no data.
type Empty struct{}

type UpdatePreferencesRequest struct {
	Preferences []model.Preference `json:"preferences"`
}

type UpdatePrivacyRequest struct {
	DataSharingConsent bool `json:"dataSharingConsent"`
	AnonymizeData      bool `json:"anonymizeData"`
}

type StoreRequest struct {
	StoreID string `json:"storeId"`
}

type PersonalizedAdsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type AdsResponse struct {
	Ads []model.Advertisement `json:"ads"`
}

type CreateAPIKeyRequest struct {
	Name string `json:"name,omitempty"`
}

type APIKeysResponse struct {
	Keys []model.APIKey `json:"keys"`
}

type APIKeyRequest struct {
	KeyID string `json:"keyId"`
}

// UsageRequest selects a usage window. Zero bounds mean the last 30 days.
type UsageRequest struct {
	KeyID string    `json:"keyId"`
	From  time.Time `json:"from,omitempty"`
	To    time.Time `json:"to,omitempty"`
}

type CreateAdRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	TargetCategories []string  `json:"targetCategories"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Media            []byte    `json:"media,omitempty"`
	MediaContentType string    `json:"mediaContentType,omitempty"`
}

type AdRequest struct {
	AdID string `json:"adId"`
}

type MediaResponse struct {
	Data []byte `json:"data"`
}

type UserLookupRequest struct {
	Email string `json:"email"`
}

type ScanAdsRequest struct {
	Email string `json:"email"`
	Limit int    `json:"limit,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
