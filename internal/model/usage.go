package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageStore persists API key usage events.
type UsageStore interface {
	Insert(ctx context.Context, usage APIUsage) error
	ListByKey(ctx context.Context, keyID uuid.UUID, from, to time.Time) ([]APIUsage, error)
}

// APIUsage is one authenticated call made with an API key.
type APIUsage struct {
	APIKeyID  uuid.UUID `json:"apiKeyId"`
	StoreID   uuid.UUID `json:"storeId"`
	Method    string    `json:"method"`
	Endpoint  string    `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
}

// UsageSummary aggregates usage of a single key over a window.
type UsageSummary struct {
	KeyID             uuid.UUID      `json:"keyId"`
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
	TotalRequests     int            `json:"totalRequests"`
	MethodBreakdown   map[string]int `json:"methodBreakdown"`
	EndpointBreakdown map[string]int `json:"endpointBreakdown"`
	DailyUsage        []DailyUsage   `json:"dailyUsage"`
}

// DailyUsage is the request count for one calendar day (UTC).
type DailyUsage struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UsageTracker accepts usage events without blocking the caller.
type UsageTracker interface {
	Track(usage APIUsage)
}
