package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rfmelo/gastos/pkg/models"
)

// Header is the canonical column set of the persisted ledger file.
var Header = []string{"date", "description", "amount", "category"}

// FilterFunc selects which records are written out.
type FilterFunc func(models.Transaction) bool

// Create renders a ledger in the canonical CSV format. A nil filter writes
// every record.
func Create(ledger models.Ledger, filter FilterFunc) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(Header)
	for _, t := range ledger {
		if filter != nil && !filter(t) {
			continue
		}
		_ = w.Write([]string{
			t.Date.Format(models.DateLayout),
			t.Description,
			// Round-trip precision: the persisted amount must read back as
			// the exact value that was written, or dedup keys drift.
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			string(t.Category),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// Parse reads a canonical ledger file back into memory. The file must carry
// the exact canonical header; any row that fails date, amount or category
// parsing fails the whole read, since the persisted file is expected to be
// schema-consistent.
func Parse(data []byte) (models.Ledger, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return models.Ledger{}, nil
	}

	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	ledger := make(models.Ledger, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(Header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", i+2, len(Header), len(rec))
		}
		date, err := time.Parse(models.DateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", i+2, rec[0])
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q", i+2, rec[2])
		}
		category, ok := models.ParseCategory(rec[3])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown category %q", i+2, rec[3])
		}
		ledger = append(ledger, models.Transaction{
			Date:        date,
			Description: rec[1],
			Amount:      amount,
			Category:    category,
		})
	}
	return ledger, nil
}

func checkHeader(row []string) error {
	if len(row) != len(Header) {
		return fmt.Errorf("unexpected header %v", row)
	}
	for i, name := range Header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), name) {
			return fmt.Errorf("unexpected header %v", row)
		}
	}
	return nil
}
