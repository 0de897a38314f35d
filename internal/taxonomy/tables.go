package taxonomy

import "regexp"

// Main category identifiers. Subcategories share the hundred of their parent.
const (
	Electronics        = 100
	Clothing           = 200
	HomeGarden         = 300
	BeautyPersonalCare = 400
	SportsOutdoors     = 500
	BooksMedia         = 600
	FoodGrocery        = 700
	Automotive         = 800
	HealthWellness     = 900
	ToysGames          = 1000
)

// Unknown is the name reported for input that does not classify.
const Unknown = "unknown"

// NumericAttribute marks an attribute whose values are free-form numbers.
const NumericAttribute = "numeric"

var mainCategories = map[int]string{
	Electronics:        "electronics",
	Clothing:           "clothing",
	HomeGarden:         "home_garden",
	BeautyPersonalCare: "beauty_personal_care",
	SportsOutdoors:     "sports_outdoors",
	BooksMedia:         "books_media",
	FoodGrocery:        "food_grocery",
	Automotive:         "automotive",
	HealthWellness:     "health_wellness",
	ToysGames:          "toys_games",
}

var subcategories = map[int]string{
	101: "smartphones",
	102: "computers",
	103: "audio",
	104: "tvs_displays",
	105: "cameras",
	106: "wearables",
	107: "gaming",
	108: "smart_home",
	109: "tablets",
	110: "electronics_accessories",

	201: "mens_clothing",
	202: "womens_clothing",
	203: "childrens_clothing",
	204: "footwear",
	205: "clothing_accessories",
	206: "activewear",
	207: "formal_wear",
	208: "underwear",
	209: "seasonal",
	210: "sustainable_fashion",

	301: "furniture",
	302: "kitchen",
	303: "home_decor",
	304: "bedding_bath",
	305: "storage",
	306: "garden",
	307: "lighting",
	308: "appliances",
	309: "home_improvement",
	310: "home_office",
}

// commonNames are everyday names shoppers and stores use for known categories.
var commonNames = map[string]int{
	"smartphones": 101,
	"computers":   102,
	"audio":       103,
	"tvs":         104,
	"cameras":     105,
	"wearables":   106,
	"gaming":      107,
	"smart_home":  108,
	"tablets":     109,
	"accessories": 110,
	"clothing":    Clothing,
	"fashion":     Clothing,
	"shirts":      Clothing,
	"pants":       Clothing,
	"dresses":     Clothing,
	"furniture":   301,
	"kitchen":     302,
	"decor":       303,
	"lighting":    307,
	"garden":      306,
}

// nameIndex maps canonical names of main categories and subcategories to ids.
var nameIndex = func() map[string]int {
	idx := make(map[string]int, len(mainCategories)+len(subcategories))
	for id, name := range mainCategories {
		idx[name] = id
	}
	for id, name := range subcategories {
		idx[name] = id
	}
	return idx
}()

type rule struct {
	matches func(string) bool
	main    int
}

func pattern(expr string) func(string) bool {
	return regexp.MustCompile(`(?i)` + expr).MatchString
}

// categoryRules are evaluated in order and the first match wins. Input such
// as "home electronics" matches more than one rule, so the order is part of
// the classification contract.
var categoryRules = []rule{
	{pattern(`electronics|smartphone|computer|audio|tv|camera|wearable|gaming|tablet`), Electronics},
	{pattern(`clothing|fashion|apparel|wear|shoe|dress|pant|shirt`), Clothing},
	{pattern(`home|furniture|kitchen|decor|garden|lighting|appliance`), HomeGarden},
	{pattern(`beauty|cosmetic|makeup|skincare|personal care`), BeautyPersonalCare},
	{pattern(`sports|outdoors|fitness|exercise|recreation`), SportsOutdoors},
	{pattern(`books|media|reading|e-?book|audio ?book`), BooksMedia},
	{pattern(`food|grocery|beverage|drink|snack`), FoodGrocery},
	{pattern(`automotive|car|vehicle|auto`), Automotive},
	{pattern(`health|wellness|medical|supplement`), HealthWellness},
	{pattern(`toys|games|entertainment|plaything`), ToysGames},
}

var priceRanges = []string{"budget", "mid_range", "premium", "luxury"}

var categoryAttributes = map[int]map[string][]string{
	Electronics: {
		"price_range":  priceRanges,
		"brand":        {"apple", "samsung", "sony", "google", "lg", "other"},
		"color":        {"black", "white", "silver", "gold", "blue", "red", "other"},
		"feature":      {"wireless", "smart", "portable", "gaming", "waterproof"},
		"rating":       {"1", "2", "3", "4", "5"},
		"release_year": {NumericAttribute},
	},
	Clothing: {
		"price_range": priceRanges,
		"color":       {"black", "white", "blue", "red", "green", "yellow", "pink", "other"},
		"material":    {"cotton", "wool", "polyester", "leather", "denim", "other"},
		"size":        {"xs", "s", "m", "l", "xl", "xxl"},
		"style":       {"casual", "formal", "sport", "vintage", "business"},
		"season":      {"summer", "winter", "spring", "fall", "all_season"},
		"gender":      {"men", "women", "unisex", "children"},
	},
	HomeGarden: {
		"price_range": priceRanges,
		"color":       {"black", "white", "wood", "metal", "beige", "grey", "other"},
		"material":    {"wood", "metal", "plastic", "glass", "fabric", "other"},
		"style":       {"modern", "traditional", "minimalist", "industrial", "rustic"},
		"room":        {"living", "bedroom", "kitchen", "bathroom", "office", "outdoor"},
		"size":        {"small", "medium", "large"},
	},
}

type bracket struct {
	name string
	min  float64
	max  float64 // exclusive; zero means unbounded
}

var priceBrackets = map[int][]bracket{
	Electronics: {
		{"budget", 0, 100}, {"mid_range", 100, 500}, {"premium", 500, 1000}, {"luxury", 1000, 0},
	},
	Clothing: {
		{"budget", 0, 30}, {"mid_range", 30, 100}, {"premium", 100, 300}, {"luxury", 300, 0},
	},
	HomeGarden: {
		{"budget", 0, 50}, {"mid_range", 50, 200}, {"premium", 200, 500}, {"luxury", 500, 0},
	},
	BeautyPersonalCare: {
		{"budget", 0, 15}, {"mid_range", 15, 50}, {"premium", 50, 100}, {"luxury", 100, 0},
	},
	SportsOutdoors: {
		{"budget", 0, 25}, {"mid_range", 25, 100}, {"premium", 100, 300}, {"luxury", 300, 0},
	},
}
