package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/export"
	"github.com/Sternrassler/gh-repo-sampler/pkg/metrics"
	"github.com/Sternrassler/gh-repo-sampler/pkg/presets"
	"github.com/Sternrassler/gh-repo-sampler/pkg/query"
	"github.com/Sternrassler/gh-repo-sampler/pkg/ratelimit"
	"github.com/Sternrassler/gh-repo-sampler/pkg/repository"
	"github.com/Sternrassler/gh-repo-sampler/pkg/sampler"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// tokenHeader lets a caller ask for the rate limit of their own token.
const tokenHeader = "X-GitHub-Token"

// maxBodyBytes bounds API request bodies. Exports carry at most a few pages
// of formatted repositories.
const maxBodyBytes = 4 << 20

type searcher interface {
	Search(ctx context.Context, req search.Request) search.Response
}

type rateLimitReader interface {
	RateLimitState(ctx context.Context, token string) (*ratelimit.State, error)
}

type server struct {
	search    searcher
	rateLimit rateLimitReader
	// ready checks dependencies for /ready. Nil means always ready.
	ready  func(ctx context.Context) error
	logger zerolog.Logger
	now    func() time.Time
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(s.logger))
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/presets", s.handlePresets)
		r.Get("/presets/{id}", s.handlePreset)
		r.Get("/time-periods", s.handleTimePeriods)
		r.Get("/rate-limit", s.handleRateLimit)
		r.Post("/export/json", s.handleExportJSON)
		r.Post("/export/csv", s.handleExportCSV)
	})

	return r
}

// statusForKind maps a failure kind onto the API status code.
func statusForKind(kind sampler.Kind) int {
	switch kind {
	case sampler.KindNone:
		return http.StatusOK
	case sampler.KindValidation:
		return http.StatusBadRequest
	case sampler.KindRateLimited:
		return http.StatusTooManyRequests
	case sampler.KindUnauthorized:
		return http.StatusUnauthorized
	case sampler.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

type errorBody struct {
	Success bool         `json:"success"`
	Kind    sampler.Kind `json:"kind,omitempty"`
	Error   string       `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind sampler.Kind, msg string) {
	writeJSON(w, status, errorBody{Success: false, Kind: kind, Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, sampler.KindValidation, "invalid request body: "+err.Error())
		return
	}

	resp := s.search.Search(r.Context(), req)
	if !resp.Success {
		zerolog.Ctx(r.Context()).Warn().
			Str("kind", string(resp.Kind)).
			Str("query", resp.Query).
			Str("error", resp.Error).
			Msg("Search failed")
	}
	writeJSON(w, statusForKind(resp.Kind), resp)
}

func (s *server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"presets": presets.All(),
	})
}

func (s *server) handlePreset(w http.ResponseWriter, r *http.Request) {
	p, err := presets.Get(chi.URLParam(r, "id"))
	if errors.Is(err, presets.ErrNotFound) {
		writeError(w, http.StatusNotFound, "", "Preset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"preset":  p,
	})
}

func (s *server) handleTimePeriods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"time_periods": query.PeriodNames(),
	})
}

func (s *server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	state, err := s.rateLimit.RateLimitState(r.Context(), r.Header.Get(tokenHeader))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to read rate limit state")
		writeError(w, http.StatusInternalServerError, "", "rate limit state unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"known":      state.Limit >= 0,
		"exhausted":  state.IsExhausted(),
		"reset_in":   int(state.TimeUntilReset().Seconds()),
		"rate_limit": state,
	})
}

type exportRequest struct {
	Repositories []repository.Repository `json:"repositories"`
}

func (s *server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, sampler.KindValidation, "invalid request body: "+err.Error())
		return
	}

	now := s.now()
	w.Header().Set("Content-Type", export.ContentTypeJSON)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename("json", now)+`"`)
	if err := export.WriteJSON(w, req.Repositories, now); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("JSON export failed")
	}
}

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, sampler.KindValidation, "invalid request body: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename("csv", s.now())+`"`)
	if err := export.WriteCSV(w, req.Repositories); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("CSV export failed")
	}
}
