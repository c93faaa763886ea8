package models

import "strings"

// Category is one label from the fixed spending taxonomy.
type Category string

const (
	Food      Category = "Food"
	Transport Category = "Transport"
	Leisure   Category = "Leisure"
	Housing   Category = "Housing"
	Health    Category = "Health"
	Education Category = "Education"
	Other     Category = "Other"

	// Unclassified marks a record still pending manual or automatic
	// classification. It is a sentinel, not part of the taxonomy.
	Unclassified Category = "Unclassified"

	// CategoryAll is the filter sentinel meaning "no category filter".
	CategoryAll Category = "All"
)

// Categories returns the fixed taxonomy in display order. The order is also
// used for deterministic tie-breaking in statistics.
func Categories() []Category {
	return []Category{Food, Transport, Leisure, Housing, Health, Education, Other}
}

// CategoryNames returns the taxonomy as plain strings, suitable as candidate
// labels for a classification backend.
func CategoryNames() []string {
	cats := Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

// ParseCategory matches s against the taxonomy and the Unclassified sentinel,
// case insensitively. Returns false for anything outside the fixed set.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	if strings.EqualFold(s, string(Unclassified)) {
		return Unclassified, true
	}
	return "", false
}

// Valid reports whether c is a taxonomy member or the Unclassified sentinel.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}
