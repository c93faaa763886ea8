package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfmelo/gastos/pkg/config"
	"github.com/rfmelo/gastos/pkg/csv"
	"github.com/rfmelo/gastos/pkg/ledger"
	"github.com/rfmelo/gastos/pkg/models"
	"github.com/rfmelo/gastos/pkg/parser"
	"github.com/rfmelo/gastos/pkg/stats"
)

// Server exposes the ledger pipeline over HTTP. Every request reloads the
// ledger from the store, so state stays consistent without any server-side
// session: last successful write wins.
type Server struct {
	config *config.Config
	logger *log.Logger
	mux    *http.ServeMux
	parser *parser.Parser
	ledger *ledger.Service
}

// New creates a new HTTP server around the ledger service.
func New(cfg *config.Config, ledgerSvc *ledger.Service, logger *log.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		parser: parser.New(logger),
		ledger: ledgerSvc,
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/transactions", s.withLogging(s.handleTransactions))
	s.mux.HandleFunc("/api/transactions/", s.withLogging(s.handleUpdateCategory))
	s.mux.HandleFunc("/api/import", s.withLogging(s.handleImport))
	s.mux.HandleFunc("/api/classify", s.withLogging(s.handleClassify))
	s.mux.HandleFunc("/api/stats", s.withLogging(s.handleStats))
	s.mux.HandleFunc("/api/export", s.withLogging(s.handleExport))
}

// Handler returns the configured route handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Transaction is the JSON view of a ledger record.
type Transaction struct {
	ID          string  `json:"id"`
	Index       int     `json:"index"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

func toView(l models.Ledger) []Transaction {
	out := make([]Transaction, len(l))
	for i, t := range l {
		out[i] = Transaction{
			ID:          t.ID(),
			Index:       i,
			Date:        t.Date.Format(models.DateLayout),
			Description: t.Description,
			Amount:      t.Amount,
			Category:    string(t.Category),
		}
	}
	return out
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreate(w, r)
	default:
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	category, from, to, err := parseFilters(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}
	filtered := ledger.Filter(full, category, from, to)

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"transactions": toView(filtered),
		"total":        len(filtered),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

type createRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Classify    bool    `json:"classify"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}

	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid date %q", req.Date), nil)
		return
	}

	category := models.Unclassified
	if req.Category != "" {
		c, ok := models.ParseCategory(req.Category)
		if !ok {
			s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category), nil)
			return
		}
		category = c
	}

	tx := models.Transaction{
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Category:    category,
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	updated, err := s.ledger.Append(full, tx)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to save ledger", err)
		return
	}

	if req.Classify && tx.Category == models.Unclassified {
		updated, _, err = s.ledger.ClassifyPending(updated, nil)
		if err != nil {
			s.respondError(w, r, http.StatusInternalServerError, "failed to save ledger", err)
			return
		}
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"transaction": toView(updated)[len(updated)-1],
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

type updateCategoryRequest struct {
	Category string `json:"category"`
}

// handleUpdateCategory serves PUT /api/transactions/{ref}/category where ref
// is either a positional index or a stable record ID.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	ref, ok := strings.CutSuffix(rest, "/category")
	if !ok || ref == "" {
		s.respondError(w, r, http.StatusBadRequest, "expected /api/transactions/{ref}/category", nil)
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid json body", err)
		return
	}
	category, okCat := models.ParseCategory(req.Category)
	if !okCat {
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category), nil)
		return
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	var updated bool
	if index, convErr := strconv.Atoi(ref); convErr == nil {
		_, updated, err = s.ledger.UpdateCategory(full, index, category)
	} else {
		_, updated, err = s.ledger.UpdateCategoryByID(full, ref, category)
	}
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to save ledger", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"updated": updated,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to read file", err)
		return
	}

	imported, err := s.parser.ProcessBytes(data, header.Filename)
	if err != nil {
		// Whole-file rejection: the existing ledger stays untouched.
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	existing, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	merged, duplicates, err := s.ledger.MergeImport(existing, imported)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to save ledger", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"added":      len(merged) - len(existing),
		"duplicates": duplicates,
		"total":      len(merged),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	_, classified, err := s.ledger.ClassifyPending(full, nil)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to save ledger", err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"classified": classified,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	category, from, to, err := parseFilters(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}
	filtered := ledger.Filter(full, category, from, to)

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"stats":      stats.Compute(filtered),
		"categories": stats.ByCategory(filtered),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	full, err := s.ledger.Store().Load()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if _, err := w.Write(csv.Create(full, nil)); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

func parseFilters(r *http.Request) (models.Category, time.Time, time.Time, error) {
	var category models.Category
	var from, to time.Time

	if raw := r.URL.Query().Get("category"); raw != "" && !strings.EqualFold(raw, string(models.CategoryAll)) {
		c, ok := models.ParseCategory(raw)
		if !ok {
			return "", from, to, fmt.Errorf("unknown category %q", raw)
		}
		category = c
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return "", from, to, fmt.Errorf("invalid from date %q", raw)
		}
		from = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return "", from, to, fmt.Errorf("invalid to date %q", raw)
		}
		to = d
	}
	return category, from, to, nil
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log requests and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
