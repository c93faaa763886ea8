package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/models"
)

func testLedger() models.Ledger {
	d1, _ := time.Parse(models.DateLayout, "2023-04-01")
	d2, _ := time.Parse(models.DateLayout, "2023-04-03")
	return models.Ledger{
		{Date: d1, Description: "Supermarket", Amount: -150.50, Category: models.Food},
		{Date: d2, Description: "Salary", Amount: 3000.00, Category: models.Other},
	}
}

func TestLoadColdStart(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "ledger.csv"), log.Default())

	ledger, err := s.Load()
	if err != nil {
		t.Fatalf("cold-start load should not error: %v", err)
	}
	if len(ledger) != 0 {
		t.Errorf("expected empty ledger, got %d records", len(ledger))
	}
}

func TestSaveCreatesDirectoryAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "ledger.csv")
	s := New(path, log.Default())

	if err := s.Save(testLedger()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
	if loaded[0].Description != "Supermarket" || loaded[0].Amount != -150.50 || loaded[0].Category != models.Food {
		t.Errorf("unexpected first record: %+v", loaded[0])
	}
	if loaded[1].Date.Format(models.DateLayout) != "2023-04-03" {
		t.Errorf("unexpected second date: %s", loaded[1].Date)
	}
}

func TestSavePreservesAmountPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	s := New(path, log.Default())

	d, _ := time.Parse(models.DateLayout, "2023-04-01")
	tx := models.Transaction{Date: d, Description: "Fuel", Amount: -150.505, Category: models.Transport}

	if err := s.Save(models.Ledger{tx}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded[0].Amount != tx.Amount {
		t.Errorf("amount changed across save/load: wrote %v, read %v", tx.Amount, loaded[0].Amount)
	}
	if loaded[0].Key() != tx.Key() {
		t.Errorf("dedup key changed across save/load: %q vs %q", tx.Key(), loaded[0].Key())
	}
	if loaded[0].ID() != tx.ID() {
		t.Errorf("stable id changed across save/load: %q vs %q", tx.ID(), loaded[0].ID())
	}
}

func TestSaveReplacesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	s := New(path, log.Default())

	if err := s.Save(testLedger()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(testLedger()[:1]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("expected the file to reflect the last save, got %d records", len(loaded))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte("date,description,amount,category\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path, log.Default())
	if _, err := s.Load(); err == nil {
		t.Fatal("expected an error for a corrupt ledger file")
	}
}
