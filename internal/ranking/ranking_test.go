package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ad(title string, days int, categories ...string) model.Advertisement {
	return model.Advertisement{
		ID:               uuid.New(),
		Title:            title,
		TargetCategories: categories,
		Validity:         model.Validity{Start: now.Add(-time.Hour), End: now.Add(time.Duration(days) * 24 * time.Hour)},
	}
}

func purchase(categories ...string) model.UserData {
	items := make([]model.PurchaseItem, len(categories))
	for i, c := range categories {
		items[i] = model.PurchaseItem{Name: c, Category: c, Quantity: 1}
	}
	return model.UserData{
		DataType: model.DataTypePurchase,
		Entries:  []model.DataEntry{{Items: items}},
	}
}

func titles(ads []model.Advertisement) []string {
	out := make([]string, len(ads))
	for i, a := range ads {
		out[i] = a.Title
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		ad      model.Advertisement
		profile *model.Profile
		want    float64
	}{
		{
			name:    "preference match",
			ad:      ad("a", 0, "electronics"),
			profile: &model.Profile{Categories: []string{"electronics"}},
			want:    5,
		},
		{
			name:    "each target category counts",
			ad:      ad("a", 0, "electronics", "books"),
			profile: &model.Profile{Categories: []string{"books", "electronics"}},
			want:    10,
		},
		{
			name:    "each purchased item counts",
			ad:      ad("a", 0, "electronics"),
			profile: &model.Profile{Purchases: []model.UserData{purchase("electronics", "electronics", "books")}},
			want:    6,
		},
		{
			name:    "freshness",
			ad:      ad("a", 10),
			profile: &model.Profile{},
			want:    1,
		},
		{
			name:    "expired ads get no negative freshness",
			ad:      ad("a", -3, "electronics"),
			profile: &model.Profile{},
			want:    0,
		},
		{
			name:    "categories compared normalized",
			ad:      ad("a", 0, "Home Garden"),
			profile: &model.Profile{Categories: []string{"home_garden"}},
			want:    5,
		},
		{
			name: "nil profile",
			ad:   ad("a", 0, "electronics"),
			want: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Score(tt.ad, tt.profile, now), 1e-9)
		})
	}
}

func TestRank(t *testing.T) {
	t.Run("preference wins", func(t *testing.T) {
		a := ad("A", 0, "electronics")
		b := ad("B", 0, "fashion")
		got := Rank([]model.Advertisement{b, a}, &model.Profile{Categories: []string{"electronics"}}, 0, now)
		assert.Equal(t, []string{"A", "B"}, titles(got))
	})

	t.Run("ties keep input order", func(t *testing.T) {
		ads := []model.Advertisement{ad("1", 0), ad("2", 0), ad("3", 0)}
		got := Rank(ads, nil, 10, now)
		assert.Equal(t, []string{"1", "2", "3"}, titles(got))
	})

	t.Run("truncates to default limit", func(t *testing.T) {
		ads := make([]model.Advertisement, 8)
		for i := range ads {
			ads[i] = ad(string(rune('a'+i)), i)
		}
		got := Rank(ads, &model.Profile{}, 0, now)
		assert.Len(t, got, DefaultLimit)
		assert.Equal(t, "h", got[0].Title)
	})

	t.Run("freshness breaks relevance ties", func(t *testing.T) {
		soon := ad("soon", 1, "books")
		later := ad("later", 20, "books")
		got := Rank([]model.Advertisement{soon, later}, &model.Profile{Categories: []string{"books"}}, 2, now)
		assert.Equal(t, []string{"later", "soon"}, titles(got))
	})

	t.Run("empty input", func(t *testing.T) {
		got := Rank(nil, nil, 5, now)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
