package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rfmelo/gastos/pkg/models"
)

var requiredColumns = []string{"date", "description", "amount"}

// Accepted date layouts for imported files. The persisted format is always
// ISO; uploads also show up with slashed day-first dates.
var dateLayouts = []string{
	models.DateLayout,
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
}

// buildLedger validates raw rows (header first) and converts them into a
// canonical ledger. Any parse failure rejects the entire input.
func buildLedger(rows [][]string) (models.Ledger, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
	}
	dateIdx := cols["date"]
	descIdx := cols["description"]
	amountIdx := cols["amount"]
	categoryIdx, hasCategory := cols["category"]

	ledger := make(models.Ledger, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2

		if len(row) <= dateIdx || len(row) <= descIdx || len(row) <= amountIdx {
			return nil, fmt.Errorf("line %d: missing fields", line)
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := parseAmount(row[amountIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		// Unknown category values are treated like a missing column.
		category := models.Unclassified
		if hasCategory && len(row) > categoryIdx {
			if c, ok := models.ParseCategory(row[categoryIdx]); ok {
				category = c
			}
		}

		ledger = append(ledger, models.Transaction{
			Date:        date,
			Description: strings.TrimSpace(row[descIdx]),
			Amount:      amount,
			Category:    category,
		})
	}
	return ledger, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	// The last separator is the decimal mark; the other kind, if present,
	// separates thousands. Covers both 1.234,56 and 1,234.56.
	if comma := strings.LastIndex(s, ","); comma >= 0 {
		if strings.LastIndex(s, ".") > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}
