package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTransactionID(t *testing.T) {
	tx := Transaction{Date: date("2023-04-01"), Description: "Supermarket", Amount: -150.50}

	id := tx.ID()
	if len(id) != 8 {
		t.Fatalf("ID length = %d, want 8", len(id))
	}
	if id != tx.ID() {
		t.Error("ID is not deterministic")
	}

	// Whitespace and case in the description do not change the ID.
	same := Transaction{Date: tx.Date, Description: "  SUPERMARKET ", Amount: tx.Amount}
	if same.ID() != id {
		t.Error("normalized description changed the ID")
	}

	// Reclassifying keeps the ID stable.
	tx.Category = Food
	if tx.ID() != id {
		t.Error("category changed the ID")
	}

	other := Transaction{Date: tx.Date, Description: "Pharmacy", Amount: tx.Amount}
	if other.ID() == id {
		t.Error("distinct records share an ID")
	}

	// Amounts differing past the second decimal are distinct records and
	// must get distinct IDs.
	third := Transaction{Date: tx.Date, Description: tx.Description, Amount: -150.505}
	fourth := Transaction{Date: tx.Date, Description: tx.Description, Amount: -150.504}
	if third.ID() == fourth.ID() {
		t.Error("amounts differing in the third decimal share an ID")
	}
}

func TestTransactionKeyExactAmount(t *testing.T) {
	a := Transaction{Date: date("2023-04-01"), Description: "Supermarket", Amount: -150.501}
	b := Transaction{Date: date("2023-04-01"), Description: "Supermarket", Amount: -150.502}
	if a.Key() == b.Key() {
		t.Error("amounts that round to the same display value must not share a key")
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Food", Food, true},
		{"food", Food, true},
		{" TRANSPORT ", Transport, true},
		{"Unclassified", Unclassified, true},
		{"All", "", false},
		{"Snacks", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLedgerCloneDoesNotAlias(t *testing.T) {
	l := Ledger{{Date: date("2023-04-01"), Description: "Supermarket", Amount: -150.50, Category: Unclassified}}
	c := l.Clone()
	c[0].Category = Food
	if l[0].Category != Unclassified {
		t.Error("Clone shares backing storage with the original")
	}
}

type fakeStatementParser struct {
	perFile map[string]Ledger
}

func (p *fakeStatementParser) ProcessBytes(data []byte, filename string) (Ledger, error) {
	return p.perFile[filename], nil
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"april.csv", "may.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	manifestPath := filepath.Join(dir, "manifest.yaml")
	content := strings.Join([]string{
		"imports:",
		"  - file: " + filepath.Join(dir, "april.csv"),
		"  - file: " + filepath.Join(dir, "may.csv"),
		"",
	}, "\n")
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest, err := ManifestFromFile(manifestPath)
	if err != nil {
		t.Fatalf("ManifestFromFile failed: %v", err)
	}
	if len(manifest.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(manifest.Imports))
	}

	p := &fakeStatementParser{perFile: map[string]Ledger{
		"april.csv": {{Date: date("2023-04-01"), Description: "Supermarket", Amount: -150.50}},
		"may.csv":   {{Date: date("2023-05-02"), Description: "Pharmacy", Amount: -30}},
	}}

	var all Ledger
	for _, f := range manifest.Imports {
		records, err := f.Transactions(p)
		if err != nil {
			t.Fatalf("Transactions failed: %v", err)
		}
		all = append(all, records...)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records across the manifest, got %d", len(all))
	}
}

func TestManifestMissingStatementFile(t *testing.T) {
	f := ImportFile{FilePath: filepath.Join(t.TempDir(), "nope.csv")}
	if _, err := f.Transactions(&fakeStatementParser{}); err == nil {
		t.Error("expected error for a missing statement file")
	}
}
