package classifier

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/config"
	"github.com/rfmelo/gastos/pkg/models"
)

// Classifier maps a free-text description to one label from the fixed
// category set.
type Classifier interface {
	Classify(description string) (models.Category, error)
}

// ProgressFunc observes batch progress. It is called after each item with
// the number of items completed and the batch total.
type ProgressFunc func(done, total int)

// Service is the classification gateway used by the rest of the system. It
// wraps a pluggable backend with caching and the degrade-to-default policy:
// classification is an enrichment step, so backend failures are logged and
// swallowed, never surfaced to the caller.
type Service struct {
	backend Classifier
	cache   *ttlCache
	store   *BoltCache // optional persistent cache, nil when disabled
	logger  *log.Logger
}

// NewService builds the gateway around the given backend. When
// cfg.CacheDBPath is set, classifications are also persisted across runs.
func NewService(backend Classifier, cfg *config.Config, logger *log.Logger) (*Service, error) {
	s := &Service{
		backend: backend,
		cache:   newTTLCache(cfg.CacheSize, cfg.CacheTTL),
		logger:  logger,
	}
	if cfg.CacheDBPath != "" {
		store, err := OpenBoltCache(cfg.CacheDBPath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s, nil
}

// Close releases the persistent cache, if any.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Classify returns the category for a description. Empty descriptions map to
// Other without touching the backend. Repeated calls with the same text
// within the cache window reuse the first answer.
func (s *Service) Classify(description string) models.Category {
	if strings.TrimSpace(description) == "" {
		return models.Other
	}

	if category, ok := s.cache.get(description); ok {
		return category
	}
	if s.store != nil {
		if category, ok := s.store.Get(description); ok {
			s.cache.set(description, category)
			return category
		}
	}

	category, err := s.backend.Classify(description)
	if err != nil {
		s.logger.Warn("classification failed, using default category",
			"description", description, "err", err)
		return models.Other
	}

	s.cache.set(description, category)
	if s.store != nil {
		if err := s.store.Put(description, category); err != nil {
			s.logger.Warn("failed to persist classification", "err", err)
		}
	}
	return category
}

// ClassifyBatch classifies each description sequentially, preserving input
// order. A non-nil progress observer is invoked after every item so callers
// can render a progress indicator; it never changes the output.
func (s *Service) ClassifyBatch(descriptions []string, progress ProgressFunc) []models.Category {
	categories := make([]models.Category, len(descriptions))
	for i, desc := range descriptions {
		categories[i] = s.Classify(desc)
		if progress != nil {
			progress(i+1, len(descriptions))
		}
	}
	return categories
}
