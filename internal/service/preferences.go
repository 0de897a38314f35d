package service

import (
	"context"
	"errors"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/taxonomy"
	"github.com/CDevmina/Tapiro-sub000/internal/validation"
)

const taxonomyUnavailableMessage = "Taxonomy validation service unavailable, please retry later"

// normalizePreferences validates every preference and returns the normalized
// list. Nothing is returned unless all entries pass.
func normalizePreferences(ctx context.Context, oracle model.TaxonomyOracle, prefs []model.Preference) ([]model.Preference, error) {
	out := make([]model.Preference, 0, len(prefs))

	for _, pref := range prefs {
		if err := validation.Struct(pref); err != nil {
			return nil, err
		}

		if !taxonomy.Classify(pref.Category).Known() {
			return nil, apierror.BadRequest("Invalid category: %s", pref.Category)
		}

		if len(pref.Attributes) > 0 {
			result, err := oracle.ValidateAttributes(ctx, pref.Category, pref.Attributes)
			if err != nil {
				if errors.Is(err, model.ErrValidationUnavailable) {
					return nil, apierror.Unavailable(taxonomyUnavailableMessage).WithCause(err)
				}
				return nil, apierror.Internal(err)
			}
			if !result.Valid {
				return nil, apierror.BadRequest("%s", result.Message)
			}
		}

		pref.Category = taxonomy.Normalize(pref.Category)
		out = append(out, pref)
	}

	return out, nil
}
