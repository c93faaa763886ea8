package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// readCSVRows reads every record of an uploaded CSV. Both comma and
// semicolon separators are accepted; the first line must be the header.
func readCSVRows(data []byte) ([][]string, error) {
	rows, err := readWithComma(data, ',')
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) == 1 {
		// Single-column header usually means a semicolon-separated file.
		if semi, err := readWithComma(data, ';'); err == nil && len(semi) > 0 && len(semi[0]) > 1 {
			return semi, nil
		}
	}
	return rows, nil
}

func readWithComma(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1 // column count is validated against the header later

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}
