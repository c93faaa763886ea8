package parser

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/models"
)

func TestProcessBytesValid(t *testing.T) {
	content := []byte(`date,description,amount
2023-04-01,Supermarket,-150.50
2023-04-03,Salary,3000.00`)

	parser := New(log.Default())
	output, err := parser.ProcessBytes(content, "upload.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}

	if len(output) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(output))
	}

	first := output[0]
	if first.Date.Format(models.DateLayout) != "2023-04-01" ||
		first.Description != "Supermarket" ||
		first.Amount != -150.50 ||
		first.Category != models.Unclassified {
		t.Errorf("unexpected first transaction: %+v", first)
	}
	if output[1].Amount != 3000.00 {
		t.Errorf("expected amount 3000.00, got %v", output[1].Amount)
	}
}

func TestProcessBytesColumns(t *testing.T) {
	parser := New(log.Default())

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing date column",
			content: "description,amount\nSupermarket,-10.00",
			wantErr: `column "date" not found`,
		},
		{
			name:    "missing description column",
			content: "date,amount\n2023-04-01,-10.00",
			wantErr: `column "description" not found`,
		},
		{
			name:    "missing amount column",
			content: "date,description\n2023-04-01,Supermarket",
			wantErr: `column "amount" not found`,
		},
		{
			name:    "invalid date rejects whole file",
			content: "date,description,amount\n2023-04-01,Ok,-1.00\nnot-a-date,Bad,-2.00",
			wantErr: "line 3",
		},
		{
			name:    "invalid amount rejects whole file",
			content: "date,description,amount\n2023-04-01,Ok,abc",
			wantErr: "line 2",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ProcessBytes([]byte(tt.content), "upload.csv")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}

func TestProcessBytesCategoryHandling(t *testing.T) {
	content := []byte(`date,description,amount,category,notes
2023-04-01,Supermarket,-150.50,Food,extra column is dropped
2023-04-02,Bus ticket,-4.50,Groceries,unknown category defaults
2023-04-03,Cinema,-30.00,leisure,case insensitive`)

	parser := New(log.Default())
	output, err := parser.ProcessBytes(content, "upload.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}

	expected := []models.Category{models.Food, models.Unclassified, models.Leisure}
	for i, want := range expected {
		if output[i].Category != want {
			t.Errorf("row %d: expected category %s, got %s", i, want, output[i].Category)
		}
	}
}

func TestProcessBytesAlternateFormats(t *testing.T) {
	// Semicolon separator, day-first dates and decimal commas.
	content := []byte("date;description;amount\n01/04/2023;Padaria;-1.234,56")

	parser := New(log.Default())
	output, err := parser.ProcessBytes(content, "upload.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}
	if len(output) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(output))
	}
	if output[0].Date.Format(models.DateLayout) != "2023-04-01" {
		t.Errorf("unexpected date %s", output[0].Date)
	}
	if output[0].Amount != -1234.56 {
		t.Errorf("expected amount -1234.56, got %v", output[0].Amount)
	}
}

func TestParseAmountSeparators(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"-150.50", -150.50},
		{"-150,50", -150.50},
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"-1.234.567,89", -1234567.89},
		{"-1,234,567.89", -1234567.89},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if err != nil {
			t.Errorf("parseAmount(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProcessBytesUnsupportedFile(t *testing.T) {
	parser := New(log.Default())
	if _, err := parser.ProcessBytes([]byte("whatever"), "upload.pdf"); err == nil {
		t.Fatal("expected an error for unsupported file type")
	}
}
