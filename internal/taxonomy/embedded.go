package taxonomy

import (
	"context"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.TaxonomyOracle = (*Embedded)(nil)

// Embedded answers oracle queries from the in-process tables. It is never unavailable.
type Embedded struct{}

// NewEmbedded creates an oracle backed by the built-in tables.
func NewEmbedded() *Embedded {
	return &Embedded{}
}

func (e *Embedded) GetCategoryAttributes(_ context.Context, categoryID string) (map[string][]string, error) {
	attrs, ok := Attributes(categoryID)
	if !ok {
		return nil, model.ErrNotFound
	}
	return attrs, nil
}

func (e *Embedded) ValidateAttributes(_ context.Context, category string, attributes map[string]string) (model.ValidationResult, error) {
	return ValidateAttributes(category, attributes), nil
}

func (e *Embedded) ValidateBatch(_ context.Context, items []model.ValidationItem) (map[string]model.ValidationResult, error) {
	return ValidateBatch(items), nil
}
