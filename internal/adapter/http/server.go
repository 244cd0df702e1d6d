// Package http exposes the analysis service over HTTP: uploads, stored
// results, rendered reports, bundled samples, and operational endpoints.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/accident-analytics-service/internal/config"
	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
	"github.com/couchcryptid/accident-analytics-service/internal/report"
)

// Analyzer runs and serves analyses. *pipeline.Analyzer satisfies it.
type Analyzer interface {
	sharedobs.ReadinessChecker
	Analyze(ctx context.Context, filename string, r io.Reader) (pipeline.Record, error)
	Get(filename string) (pipeline.Record, bool)
	List() []string
	Delete(filename string) bool
}

// Server exposes the analysis API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	logger     *slog.Logger

	maxUploadBytes int64
	uploadDir      string
	samplesDir     string
}

// NewServer creates an HTTP server bound to cfg.HTTPAddr.
func NewServer(cfg *config.Config, analyzer Analyzer, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           r,
			ReadTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		analyzer:       analyzer,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		uploadDir:      cfg.UploadDir,
		samplesDir:     cfg.SamplesDir,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(analyzer))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleList)
		r.Get("/{filename}", s.handleGet)
		r.Get("/{filename}/report", s.handleReport)
		r.Delete("/{filename}", s.handleDelete)
	})
	r.Get("/samples", s.handleSamples)
	r.Post("/samples/{filename}/analyze", s.handleAnalyzeSample)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"analyses": s.analyzer.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, rec); err != nil {
		s.logger.Error("render report failed", "filename", rec.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !s.analyzer.Delete(name) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.logger.Info("analysis deleted", "filename", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (pipeline.Record, bool) {
	rec, ok := s.analyzer.Get(chi.URLParam(r, "filename"))
	if !ok {
		writeError(w, http.StatusNotFound, "analysis not found")
	}
	return rec, ok
}

// respondAnalysis runs the analyzer and maps the outcome to a response.
func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, name string, body io.Reader) {
	rec, err := s.analyzer.Analyze(r.Context(), name, body)
	if err != nil {
		if errors.Is(err, domain.ErrUnparsableInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("analysis failed", "filename", name, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	w.Header().Set("Location", "/analyses/"+url.PathEscape(rec.Filename))
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
