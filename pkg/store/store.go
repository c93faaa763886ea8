package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/csv"
	"github.com/rfmelo/gastos/pkg/models"
)

// Store persists the ledger as a single CSV file. Callers reload whenever
// they need fresh state; there is no change notification.
type Store struct {
	path   string
	logger *log.Logger
}

// New returns a Store writing to path.
func New(path string, logger *log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the location of the ledger file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted ledger. A missing file is the normal cold-start
// case and yields an empty ledger, not an error.
func (s *Store) Load() (models.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no ledger file yet, starting empty", "path", s.path)
			return models.Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	ledger, err := csv.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger file %s: %w", s.path, err)
	}
	return ledger, nil
}

// Save writes the full ledger. The write goes through a temp file in the
// target directory followed by a rename, so a successful return means the
// file reflects exactly the given ledger.
func (s *Store) Save(ledger models.Ledger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(csv.Create(ledger, nil)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	s.logger.Debug("ledger saved", "path", s.path, "records", len(ledger))
	return nil
}
