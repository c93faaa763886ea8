package ledger

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/classifier"
	"github.com/rfmelo/gastos/pkg/models"
	"github.com/rfmelo/gastos/pkg/store"
)

// Service implements the mutations of the ledger. Every successful mutation
// is persisted through the store before the updated ledger is returned; on a
// persistence failure the caller keeps the previous in-memory ledger.
type Service struct {
	store      *store.Store
	classifier *classifier.Service
	logger     *log.Logger
}

func New(store *store.Store, classifier *classifier.Service, logger *log.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// Store exposes the underlying record store for load/export paths.
func (s *Service) Store() *store.Store {
	return s.store
}

// Append adds one record at the end of the ledger and persists the result.
// An empty category defaults to Unclassified; anything outside the fixed set
// is rejected so the schema invariant holds.
func (s *Service) Append(l models.Ledger, tx models.Transaction) (models.Ledger, error) {
	if tx.Category == "" {
		tx.Category = models.Unclassified
	}
	if !tx.Category.Valid() {
		return l, fmt.Errorf("invalid category %q", tx.Category)
	}

	updated := append(l.Clone(), tx)
	if err := s.store.Save(updated); err != nil {
		return l, err
	}
	s.logger.Debug("transaction appended", "id", tx.ID(), "description", tx.Description)
	return updated, nil
}

// UpdateCategory changes the category of the record at index and persists.
// An out-of-range index is a no-op: the unchanged ledger is returned with
// ok=false and no error. Callers validate index provenance themselves.
func (s *Service) UpdateCategory(l models.Ledger, index int, category models.Category) (models.Ledger, bool, error) {
	if !category.Valid() {
		return l, false, fmt.Errorf("invalid category %q", category)
	}
	if index < 0 || index >= len(l) {
		s.logger.Warn("update ignored, index out of range", "index", index, "records", len(l))
		return l, false, nil
	}

	updated := l.Clone()
	updated[index].Category = category
	if err := s.store.Save(updated); err != nil {
		return l, false, err
	}
	return updated, true, nil
}

// UpdateCategoryByID addresses the record by its stable synthetic ID instead
// of its position. Same silent-miss policy as UpdateCategory.
func (s *Service) UpdateCategoryByID(l models.Ledger, id string, category models.Category) (models.Ledger, bool, error) {
	index := l.IndexByID(id)
	if index < 0 {
		s.logger.Warn("update ignored, unknown id", "id", id)
		return l, false, nil
	}
	return s.UpdateCategory(l, index, category)
}

// MergeImport concatenates an imported ledger after the existing one, drops
// rows whose (date, description, amount) already occurred, and persists.
// Existing rows precede imported rows, so pre-existing categorization wins
// over reimported data. Returns the merged ledger and the duplicate count.
func (s *Service) MergeImport(existing, imported models.Ledger) (models.Ledger, int, error) {
	merged := make(models.Ledger, 0, len(existing)+len(imported))
	seen := make(map[string]struct{}, len(existing)+len(imported))
	duplicates := 0

	for _, t := range append(existing.Clone(), imported...) {
		key := t.Key()
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
	}

	if err := s.store.Save(merged); err != nil {
		return existing, 0, err
	}
	s.logger.Info("import merged", "added", len(merged)-len(existing), "duplicates", duplicates)
	return merged, duplicates, nil
}

// ClassifyPending runs the classifier over every Unclassified record and
// persists once at the end. A non-nil progress observer is called after each
// record. Classification failures degrade to the default category inside the
// gateway, so this only errors on persistence.
func (s *Service) ClassifyPending(l models.Ledger, progress classifier.ProgressFunc) (models.Ledger, int, error) {
	var indices []int
	var descriptions []string
	for i, t := range l {
		if t.Category == models.Unclassified {
			indices = append(indices, i)
			descriptions = append(descriptions, t.Description)
		}
	}
	if len(indices) == 0 {
		return l, 0, nil
	}

	categories := s.classifier.ClassifyBatch(descriptions, progress)

	updated := l.Clone()
	for n, i := range indices {
		updated[i].Category = categories[n]
	}
	if err := s.store.Save(updated); err != nil {
		return l, 0, err
	}
	return updated, len(indices), nil
}

// Filter returns the records matching every given predicate. The CategoryAll
// sentinel and zero time bounds pass everything through; bounds are inclusive
// on both ends. The result is a new view; nothing is mutated or persisted.
func Filter(l models.Ledger, category models.Category, from, to time.Time) models.Ledger {
	out := make(models.Ledger, 0, len(l))
	for _, t := range l {
		if category != "" && category != models.CategoryAll && t.Category != category {
			continue
		}
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}
