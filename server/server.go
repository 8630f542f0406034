package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seo-toolkit/crawler"
	"seo-toolkit/keyword"
	"seo-toolkit/metrics"
	"seo-toolkit/mobile"
	"seo-toolkit/models"
	"seo-toolkit/onpage"
	"seo-toolkit/performance"
)

const maxRequestBody = 1 << 20

type Auditor interface {
	Audit(ctx context.Context, pageURL string) (*models.Audit, error)
}

type AuditStore interface {
	RecentAudits(ctx context.Context, limit int) ([]models.Audit, error)
}

type KeywordStore interface {
	SaveKeywordEstimate(ctx context.Context, m models.KeywordMetrics) error
}

// Options wires the optional collaborators. Nil collaborators disable the
// endpoints that need them.
type Options struct {
	Estimator *keyword.Estimator
	Auditor   Auditor
	Audits    AuditStore
	Keywords  KeywordStore
}

type Server struct {
	router    *mux.Router
	estimator *keyword.Estimator
	auditor   Auditor
	audits    AuditStore
	keywords  KeywordStore
}

func New(opts Options) *Server {
	if opts.Estimator == nil {
		opts.Estimator = keyword.NewEstimator(nil)
	}

	s := &Server{
		router:    mux.NewRouter(),
		estimator: opts.Estimator,
		auditor:   opts.Auditor,
		audits:    opts.Audits,
		keywords:  opts.Keywords,
	}

	// Registered on the root router so a wrong method gets 405, not 404.
	s.router.HandleFunc("/api/keywords/estimate", s.handleEstimate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/keywords/suggestions", s.handleSuggestions).Methods(http.MethodGet)
	s.router.HandleFunc("/api/performance", s.handlePerformance).Methods(http.MethodPost)
	s.router.HandleFunc("/api/mobile", s.handleMobile).Methods(http.MethodPost)
	s.router.HandleFunc("/api/seo-score", s.handleSEOScore).Methods(http.MethodPost)
	s.router.HandleFunc("/api/audits", s.handleCreateAudit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/audits", s.handleListAudits).Methods(http.MethodGet)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type estimateRequest struct {
	Keyword string `json:"keyword"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decode(w, r, &req) {
		return
	}

	m := s.estimator.Estimate(req.Keyword)
	metrics.RecordKeyword(string(m.Difficulty), m.Volume)

	if s.keywords != nil {
		if err := s.keywords.SaveKeywordEstimate(r.Context(), m); err != nil {
			slog.Error("failed to save keyword estimate", "keyword", m.Keyword, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, m)
}

type suggestionsResponse struct {
	Niche       string                    `json:"niche"`
	Suggestions models.KeywordSuggestions `json:"suggestions"`
	Metrics     []models.KeywordMetrics   `json:"metrics,omitempty"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	niche := r.URL.Query().Get("niche")
	if niche == "" {
		writeError(w, http.StatusBadRequest, "niche is required")
		return
	}

	resp := suggestionsResponse{Niche: niche, Suggestions: keyword.Suggest(niche)}
	if withMetrics, _ := strconv.ParseBool(r.URL.Query().Get("metrics")); withMetrics {
		resp.Metrics = s.estimator.EstimateAll(keyword.All(resp.Suggestions))
	}

	writeJSON(w, http.StatusOK, resp)
}

// A performance request carries either raw navigation timestamps or already
// derived durations. Neither means the client had no timing support.
type performanceRequest struct {
	Timing *models.NavigationTiming `json:"timing"`
	Sample *models.TimingSample     `json:"sample"`
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var req performanceRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		report *models.PerformanceReport
		err    error
	)
	switch {
	case req.Sample != nil:
		report, err = performance.Evaluate(req.Sample)
	case req.Timing != nil:
		report, err = performance.Analyze(performance.StaticTiming(*req.Timing))
	default:
		report, err = performance.Evaluate(nil)
	}

	if errors.Is(err, performance.ErrUnsupported) {
		metrics.RecordFailure("performance", "unsupported")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordScore("performance", string(report.Rating), report.Score)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMobile(w http.ResponseWriter, r *http.Request) {
	var facts models.ResponsivenessFacts
	if !decode(w, r, &facts) {
		return
	}

	report := mobile.Score(facts)
	metrics.RecordMobile(report.Score, report.IsMobileFriendly)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSEOScore(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if !decode(w, r, &fields) {
		return
	}

	// An empty object or null scores nothing and suggests nothing.
	if len(fields) == 0 {
		writeJSON(w, http.StatusOK, models.OnPageReport{Suggestions: []string{}})
		return
	}

	var in models.OnPageInput
	if err := remarshal(fields, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	report := onpage.Score(in)
	metrics.RecordScore("onpage", "scored", report.OverallScore)
	writeJSON(w, http.StatusOK, report)
}

type auditRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditor == nil {
		writeError(w, http.StatusServiceUnavailable, "auditing is not enabled")
		return
	}

	var req auditRequest
	if !decode(w, r, &req) {
		return
	}

	audit, err := s.auditor.Audit(r.Context(), req.URL)
	switch {
	case errors.Is(err, crawler.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil && audit == nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		if err != nil {
			slog.Error("audit completed with error", "url", req.URL, "error", err)
		}
		writeJSON(w, http.StatusCreated, audit)
	}
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	if s.audits == nil {
		writeError(w, http.StatusServiceUnavailable, "audit storage is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	audits, err := s.audits.RecentAudits(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list audits", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list audits")
		return
	}
	if audits == nil {
		audits = []models.Audit{}
	}

	writeJSON(w, http.StatusOK, audits)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func remarshal(fields map[string]json.RawMessage, v any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
