package main

import (
	"fmt"
	"time"

	"github.com/rfmelo/gastos/pkg/ledger"
	"github.com/rfmelo/gastos/pkg/models"
)

type filters struct {
	category string
	from     string
	to       string
}

// apply narrows a ledger down to the records matching the CLI filter flags.
func (f *filters) apply(l models.Ledger) (models.Ledger, error) {
	var category models.Category
	var from, to time.Time

	if f.category != "" && f.category != string(models.CategoryAll) {
		c, ok := models.ParseCategory(f.category)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", f.category)
		}
		category = c
	}
	if f.from != "" {
		d, err := time.Parse(models.DateLayout, f.from)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", f.from)
		}
		from = d
	}
	if f.to != "" {
		d, err := time.Parse(models.DateLayout, f.to)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", f.to)
		}
		to = d
	}

	return ledger.Filter(l, category, from, to), nil
}
