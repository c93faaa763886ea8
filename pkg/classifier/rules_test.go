package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rfmelo/gastos/pkg/models"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRulesClassify(t *testing.T) {
	path := writeRules(t, `Food:
  - supermarket
  - restaurant
Transport:
  - uber
  - bus
`)
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	tests := []struct {
		description string
		want        models.Category
	}{
		{"SUPERMARKET centro", models.Food},
		{"Uber ride home", models.Transport},
		{"monthly bus pass", models.Transport},
	}
	for _, tt := range tests {
		got, err := rules.Classify(tt.description)
		if err != nil {
			t.Errorf("Classify(%q) failed: %v", tt.description, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.description, got, tt.want)
		}
	}

	if _, err := rules.Classify("completely unrelated"); err == nil {
		t.Error("expected an error when no rule matches")
	}
}

func TestLoadRulesRejectsUnknownCategory(t *testing.T) {
	path := writeRules(t, "Snacks:\n  - chips\n")
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected an error for a category outside the fixed set")
	}

	path = writeRules(t, "Unclassified:\n  - anything\n")
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected an error for the Unclassified sentinel")
	}
}
