package taxonomy

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// Attributes returns the allowed attribute table of the main category of
// idOrName. The second result is false when the category is unknown; a known
// category without a table yields a nil map.
func Attributes(idOrName string) (map[string][]string, bool) {
	c := Classify(idOrName)
	if !c.Known() {
		return nil, false
	}

	table, ok := categoryAttributes[c.MainID]
	if !ok {
		return nil, true
	}

	out := make(map[string][]string, len(table))
	for k, v := range table {
		out[k] = slices.Clone(v)
	}
	return out, true
}

// ValidateAttributes checks attribute values against the table of the
// category's main category. Attributes absent from the table pass unchecked,
// and a category without a table is valid.
func ValidateAttributes(category string, attributes map[string]string) model.ValidationResult {
	c := Classify(category)
	if !c.Known() {
		return model.ValidationResult{Valid: false, Message: fmt.Sprintf("Unknown category: %s", category)}
	}

	table, ok := categoryAttributes[c.MainID]
	if !ok {
		return model.ValidationResult{Valid: true}
	}

	// Sorted so the first reported failure is deterministic.
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		allowed, ok := table[name]
		if !ok {
			continue
		}
		value := attributes[name]

		if len(allowed) == 1 && allowed[0] == NumericAttribute {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return model.ValidationResult{
					Valid:   false,
					Message: fmt.Sprintf("Invalid %s for %s: %s. Must be numeric", name, c.Main, value),
				}
			}
			continue
		}

		if !slices.Contains(allowed, value) {
			return model.ValidationResult{
				Valid: false,
				Message: fmt.Sprintf("Invalid %s for %s: %s. Must be one of: %s",
					name, c.Main, value, strings.Join(allowed, ", ")),
			}
		}
	}

	return model.ValidationResult{Valid: true}
}

// ValidateItem validates both the category and the attributes of one item.
func ValidateItem(item model.ValidationItem) model.ValidationResult {
	if !IsValidCategory(item.Category) {
		return model.ValidationResult{Valid: false, Message: fmt.Sprintf("Invalid category: %s", item.Category)}
	}
	return ValidateAttributes(item.Category, item.Attributes)
}

// ValidateBatch validates items and keys each result by its position.
func ValidateBatch(items []model.ValidationItem) map[string]model.ValidationResult {
	out := make(map[string]model.ValidationResult, len(items))
	for i, item := range items {
		out[strconv.Itoa(i)] = ValidateItem(item)
	}
	return out
}

// PriceRange labels price within the brackets of the main category of
// idOrName, falling back to electronics brackets.
func PriceRange(idOrName string, price float64) string {
	brackets, ok := priceBrackets[Classify(idOrName).MainID]
	if !ok {
		brackets = priceBrackets[Electronics]
	}

	for _, b := range brackets {
		if price >= b.min && (b.max == 0 || price < b.max) {
			return b.name
		}
	}
	return Unknown
}
