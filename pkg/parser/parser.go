package parser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/models"
)

// FileType represents the kind of import file being processed.
type FileType string

const (
	ImportCSV FileType = "csv"
	ImportXLS FileType = "xls"
)

// Parser validates externally supplied tabular data against the canonical
// ledger schema. Validation is all-or-nothing: a single bad row rejects the
// whole file, so callers never merge a half-valid import.
type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes parses and validates an uploaded file. The returned ledger
// conforms to the canonical schema: required columns present and well typed,
// extra columns dropped, missing categories defaulted to Unclassified.
func (p *Parser) ProcessBytes(data []byte, filename string) (models.Ledger, error) {
	fileType := detectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var rows [][]string
	var err error
	switch fileType {
	case ImportCSV:
		rows, err = readCSVRows(data)
	case ImportXLS:
		rows, err = readXLSRows(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}
	if err != nil {
		return nil, err
	}

	return buildLedger(rows)
}

func detectType(filename string) FileType {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ImportCSV
	case strings.HasSuffix(lower, ".xls"):
		return ImportXLS
	}
	return ""
}
