// Package server exposes the dataset pipeline over HTTP.
//
// The API mirrors what the terminal viewer consumes: load a dataset, read
// the reconstructed forest, resolve focus subtrees, and fetch the reveal
// sequence. Datasets are held in memory under opaque handles so clients can
// load once and navigate cheaply.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kindredtree/kindred/pkg/core/tree"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
	"github.com/kindredtree/kindred/pkg/forest"
	"github.com/kindredtree/kindred/pkg/pipeline"
)

// Server handles HTTP requests against loaded datasets.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	mu       sync.RWMutex
	datasets map[string]*dataset
}

// dataset is one loaded dataset held under an opaque handle.
type dataset struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Persons   int       `json:"persons"`
	Roots     int       `json:"roots"`
	Notice    string    `json:"notice,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	result *pipeline.Result
}

// New creates a server around the given runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		logger:   logger,
		datasets: make(map[string]*dataset),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/forest", s.handleForest)
		r.Post("/datasets", s.handleCreateDataset)
		r.Route("/datasets/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDataset)
			r.Get("/forest", s.handleDatasetForest)
			r.Get("/focus/{personID}", s.handleFocus)
			r.Get("/reveal", s.handleReveal)
			r.Get("/render", s.handleRender)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleForest is the stateless entry point: load a dataset by URL (demo by
// default) and return the forest, optionally narrowed to a focus subtree via
// the focus query parameter. Deep links use this endpoint.
func (s *Server) handleForest(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")

	result, err := s.runner.Load(r.Context(), pipeline.Options{URL: url})
	if err != nil {
		writeError(w, err)
		return
	}

	if focusID := r.URL.Query().Get("focus"); focusID != "" {
		data, err := s.runner.FocusDocument(r.Context(), result.Forest, result.ForestHash, focusID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeRawJSON(w, http.StatusOK, data)
		return
	}

	writeJSON(w, http.StatusOK, forest.FromForest(result.Forest))
}

// createDatasetRequest is the POST /api/datasets body.
type createDatasetRequest struct {
	URL     string `json:"url"`
	Refresh bool   `json:"refresh,omitempty"`
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}

	result, err := s.runner.Load(r.Context(), pipeline.Options{
		URL:        req.URL,
		Refresh:    req.Refresh,
		NoFallback: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	ds := &dataset{
		ID:        uuid.NewString(),
		URL:       req.URL,
		Persons:   result.Forest.Size(),
		Roots:     len(result.Forest.Roots),
		Notice:    result.Notice,
		CreatedAt: time.Now().UTC(),
		result:    result,
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		"id", ds.ID,
		"persons", ds.Persons,
		"roots", ds.Roots)

	writeJSON(w, http.StatusCreated, ds)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found"))
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleDatasetForest(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found"))
		return
	}
	writeJSON(w, http.StatusOK, forest.FromForest(ds.result.Forest))
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found"))
		return
	}

	personID := chi.URLParam(r, "personID")
	if err := kerrors.ValidatePersonID(personID); err != nil {
		writeError(w, err)
		return
	}

	data, err := s.runner.FocusDocument(r.Context(), ds.result.Forest, ds.result.ForestHash, personID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found"))
		return
	}
	steps := tree.Sequence(ds.result.Forest)
	writeJSON(w, http.StatusOK, forest.FromSteps(steps))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := kerrors.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), ds.result.Forest, ds.result.ForestHash, pipeline.Options{
		Formats:  []string{format},
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) lookup(id string) (*dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	default:
		return "text/plain; charset=utf-8"
	}
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes a pre-marshaled JSON document.
func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := kerrors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: kerrors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code kerrors.Code) int {
	switch code {
	case kerrors.ErrCodeInvalidInput, kerrors.ErrCodeInvalidRow, kerrors.ErrCodeInvalidFormat,
		kerrors.ErrCodeInvalidPerson, kerrors.ErrCodeInvalidDataset, kerrors.ErrCodeNotTabular:
		return http.StatusBadRequest
	case kerrors.ErrCodeNotFound, kerrors.ErrCodePersonNotFound,
		kerrors.ErrCodeDatasetNotFound, kerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case kerrors.ErrCodeNetwork, kerrors.ErrCodeTimeout:
		return http.StatusBadGateway
	case kerrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
