// Package ranking scores advertisements against a user profile.
package ranking

import (
	"math"
	"slices"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
	"github.com/CDevmina/Tapiro-sub000/internal/taxonomy"
)

// DefaultLimit is the number of ads returned when no limit is given.
const DefaultLimit = 5

const (
	preferenceWeight = 5
	purchaseWeight   = 3
	freshnessPerDay  = 0.1
)

// Score returns the relevance of ad to profile at now. A nil profile only
// scores on freshness.
func Score(ad model.Advertisement, profile *model.Profile, now time.Time) float64 {
	targets := make(map[string]struct{}, len(ad.TargetCategories))
	for _, c := range ad.TargetCategories {
		targets[taxonomy.Normalize(c)] = struct{}{}
	}

	var score float64
	if profile != nil {
		interests := make(map[string]struct{}, len(profile.Categories))
		for _, c := range profile.Categories {
			interests[taxonomy.Normalize(c)] = struct{}{}
		}
		for _, c := range ad.TargetCategories {
			if _, ok := interests[taxonomy.Normalize(c)]; ok {
				score += preferenceWeight
			}
		}

		for _, purchase := range profile.Purchases {
			for _, entry := range purchase.Entries {
				for _, item := range entry.Items {
					if _, ok := targets[taxonomy.Normalize(item.Category)]; ok {
						score += purchaseWeight
					}
				}
			}
		}
	}

	daysRemaining := ad.Validity.End.Sub(now).Hours() / 24
	score += math.Max(0, daysRemaining*freshnessPerDay)

	return score
}

// Rank orders ads by descending score and keeps at most limit of them. Equal
// scores keep their input order. A non-positive limit means DefaultLimit.
func Rank(ads []model.Advertisement, profile *model.Profile, limit int, now time.Time) []model.Advertisement {
	if limit <= 0 {
		limit = DefaultLimit
	}

	type scored struct {
		ad    model.Advertisement
		score float64
	}

	ranked := make([]scored, len(ads))
	for i, ad := range ads {
		ranked[i] = scored{ad: ad, score: Score(ad, profile, now)}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]model.Advertisement, len(ranked))
	for i, r := range ranked {
		out[i] = r.ad
	}
	return out
}
