// Package api exposes the dashboard data over HTTP. Handlers read the latest
// snapshot, apply the requested filters and hand the result to the pure
// aggregators; no aggregation logic lives here.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

// categoryDepth bounds how deep the schema reconstruction is walked when
// extracting category labels.
const categoryDepth = 2

type Server struct {
	router chi.Router
	store  *snapshot.Store
	schema schema.Schema
	unit   string
}

func NewServer(store *snapshot.Store, s schema.Schema, unit string) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		store:  store,
		schema: s,
		unit:   unit,
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/api/healthz", s.handleHealthz)
	s.router.Get("/api/summary", s.handleSummary)
	s.router.Get("/api/selection", s.handleSelection)
	s.router.Get("/api/categories", s.handleCategories)
	s.router.Get("/api/availability/table", s.handleAvailabilityTable)
	s.router.Get("/api/charts/donut", s.handleDonut)
	s.router.Get("/api/charts/bars", s.handleBars)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("Handled request")
	})
}

// latest returns the most recent snapshot, or an empty one when no refresh
// has completed yet.
func (s *Server) latest() (string, snapshot.Data) {
	timestamp, data, ok := s.store.Latest()
	if !ok {
		return "", snapshot.Data{}
	}
	return timestamp, data
}

// listParam splits a comma-separated query parameter into its non-empty
// trimmed entries.
func listParam(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
