package model

import "context"

// TaxonomyOracle validates categories and attributes. Implementations may be
// remote; an unreachable oracle reports ErrValidationUnavailable.
type TaxonomyOracle interface {
	GetCategoryAttributes(ctx context.Context, categoryID string) (map[string][]string, error)
	ValidateAttributes(ctx context.Context, category string, attributes map[string]string) (ValidationResult, error)
	ValidateBatch(ctx context.Context, items []ValidationItem) (map[string]ValidationResult, error)
}

// ValidationResult is the outcome of validating one category payload.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidationItem is one entry of a batch validation request.
type ValidationItem struct {
	Category   string            `json:"category"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
