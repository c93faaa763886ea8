package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rfmelo/gastos/pkg/models"
)

// Rules classifies descriptions offline, by keyword matching. The rules file
// is YAML mapping category names to keyword lists:
//
//	Food:
//	  - supermarket
//	  - restaurant
//	Transport:
//	  - uber
//
// A description matching no keyword is an error, which the gateway turns
// into the default category.
type Rules struct {
	keywords map[models.Category][]string
}

// LoadRules reads and validates a rules file. Keys must be members of the
// fixed category set.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}

	keywords := make(map[models.Category][]string, len(raw))
	for name, words := range raw {
		category, ok := models.ParseCategory(name)
		if !ok || category == models.Unclassified {
			return nil, fmt.Errorf("rules file references unknown category %q", name)
		}
		lowered := make([]string, len(words))
		for i, w := range words {
			lowered[i] = strings.ToLower(w)
		}
		keywords[category] = lowered
	}
	return &Rules{keywords: keywords}, nil
}

func (r *Rules) Classify(description string) (models.Category, error) {
	lower := strings.ToLower(description)
	// Walk the taxonomy in its fixed order so matches are deterministic even
	// when keywords overlap across categories.
	for _, category := range models.Categories() {
		for _, keyword := range r.keywords[category] {
			if keyword != "" && strings.Contains(lower, keyword) {
				return category, nil
			}
		}
	}
	return "", fmt.Errorf("no rule matched")
}
