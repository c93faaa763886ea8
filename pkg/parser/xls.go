package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

const maxXLSRows = 10000

// readXLSRows extracts the cells of the first sheet of an XLS workbook. The
// sheet is expected to carry the same header row as a CSV import.
func readXLSRows(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}

	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}

	// Drop fully empty rows; spreadsheets often carry trailing blanks.
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if cell != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out, nil
}
