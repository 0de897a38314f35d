package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserDataStore persists ingested interaction records. Records are append-only
// apart from their processing status.
type UserDataStore interface {
	Create(ctx context.Context, record UserData) (UserData, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ProcessedStatus) error
	ListPurchasesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]UserData, error)
}

// DataType is the kind of interaction data a store submits.
type DataType string

const (
	DataTypePurchase DataType = "purchase"
	DataTypeSearch   DataType = "search"
)

// ProcessedStatus tracks downstream processing of a UserData record.
type ProcessedStatus string

const (
	StatusPending   ProcessedStatus = "pending"
	StatusProcessed ProcessedStatus = "processed"
	StatusFailed    ProcessedStatus = "failed"
)

// UserData is an audit record of data a store submitted about a user.
type UserData struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	StoreID         uuid.UUID       `json:"storeId"`
	Email           string          `json:"email"`
	DataType        DataType        `json:"dataType"`
	Entries         []DataEntry     `json:"entries"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	ProcessedStatus ProcessedStatus `json:"processedStatus"`
	Timestamp       time.Time       `json:"timestamp"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
}

// DataEntry is a single purchase or search event.
type DataEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Items     []PurchaseItem `json:"items,omitempty" validate:"dive"`
	Total     float64        `json:"totalValue,omitempty"`
	Query     string         `json:"query,omitempty"`
	Category  string         `json:"category,omitempty"`
	Results   int            `json:"results,omitempty"`
	Clicked   []string       `json:"clicked,omitempty"`
}

// PurchaseItem is one line of a purchase entry.
type PurchaseItem struct {
	SKU        string            `json:"sku,omitempty"`
	Name       string            `json:"name" validate:"required"`
	Category   string            `json:"category" validate:"required"`
	Price      float64           `json:"price" validate:"gte=0"`
	Quantity   int               `json:"quantity" validate:"gte=0"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SubmitUserDataParams is a store's submission of interaction data.
type SubmitUserDataParams struct {
	Email    string         `json:"email" validate:"required,email"`
	DataType DataType       `json:"dataType" validate:"required,oneof=purchase search"`
	Entries  []DataEntry    `json:"entries" validate:"required,min=1,dive"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SubmitResult reports how an accepted submission was handled downstream.
type SubmitResult struct {
	RecordID       uuid.UUID       `json:"recordId"`
	Message        string          `json:"message"`
	Status         ProcessedStatus `json:"status"`
	RetryScheduled bool            `json:"retryScheduled"`
}

// ProcessRequest is the payload sent to the AI processor.
type ProcessRequest struct {
	RecordID  uuid.UUID   `json:"recordId"`
	UserID    uuid.UUID   `json:"userId"`
	Email     string      `json:"email"`
	StoreID   uuid.UUID   `json:"storeId"`
	DataType  DataType    `json:"dataType"`
	Entries   []DataEntry `json:"entries"`
	Timestamp time.Time   `json:"timestamp"`
}

// Processor forwards ingested data to downstream analytics.
type Processor interface {
	ProcessUserData(ctx context.Context, req ProcessRequest) error
}
