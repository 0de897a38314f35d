// Package taxonomy classifies product categories and validates their
// attributes against the canonical category tables.
package taxonomy

import (
	"strconv"
	"strings"
	"unicode"
)

// Classification is the canonical placement of a category identifier or name.
type Classification struct {
	// ID is the exact category id when the input names a known category, else 0.
	ID int
	// MainID is the main category id, or 0 when the input is unknown.
	MainID int
	// Main is the canonical main category name, or Unknown.
	Main string
}

// Known reports whether the input classified into a main category.
func (c Classification) Known() bool {
	return c.MainID != 0
}

var unknown = Classification{Main: Unknown}

// Classify maps a numeric category id or a free-text category name to its main
// category. Numeric input (decimal digits only) always classifies by flooring
// to the hundred. Names are matched against the canonical names, then common
// names, then the ordered pattern rules. Matching is case-insensitive.
func Classify(idOrName string) Classification {
	s := strings.TrimSpace(idOrName)
	if s == "" {
		return unknown
	}

	if n, ok := parseID(s); ok {
		return ClassifyID(n)
	}

	key := Normalize(s)
	if id, ok := nameIndex[key]; ok {
		return classification(id)
	}
	if id, ok := commonNames[key]; ok {
		return classification(id)
	}

	for _, r := range categoryRules {
		if r.matches(s) {
			return Classification{MainID: r.main, Main: mainCategories[r.main]}
		}
	}

	return unknown
}

// ClassifyID classifies a numeric category id.
func ClassifyID(id int) Classification {
	main := MainCategoryID(id)
	name, ok := mainCategories[main]
	if !ok {
		return unknown
	}

	c := Classification{MainID: main, Main: name}
	if isKnownID(id) {
		c.ID = id
	}
	return c
}

func classification(id int) Classification {
	c := ClassifyID(id)
	c.ID = id
	return c
}

// MainCategoryID floors a category id to its main category.
func MainCategoryID(id int) int {
	if id < 0 {
		return 0
	}
	return id / 100 * 100
}

// MainCategoryName returns the canonical name of the main category of id.
func MainCategoryName(id int) string {
	if name, ok := mainCategories[MainCategoryID(id)]; ok {
		return name
	}
	return Unknown
}

// CategoryName returns the canonical name of a main category or subcategory.
func CategoryName(id int) (string, bool) {
	if name, ok := mainCategories[id]; ok {
		return name, true
	}
	name, ok := subcategories[id]
	return name, ok
}

// IsValidCategory reports whether idOrName denotes a category the taxonomy
// knows. Numeric ids must exist exactly; names may match any name table or
// pattern rule.
func IsValidCategory(idOrName string) bool {
	s := strings.TrimSpace(idOrName)
	if n, ok := parseID(s); ok {
		return isKnownID(n)
	}
	return Classify(s).Known()
}

// Normalize returns the canonical spelling of a category string: trimmed,
// lower-cased, with runs of whitespace replaced by a single underscore.
// Numeric ids are returned trimmed.
func Normalize(category string) string {
	fields := strings.FieldsFunc(strings.ToLower(category), unicode.IsSpace)
	return strings.Join(fields, "_")
}

func isKnownID(id int) bool {
	_, ok := CategoryName(id)
	return ok
}

func parseID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
