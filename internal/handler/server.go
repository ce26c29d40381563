// Package handler implements the HTTP handlers for the spots directory API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, spot.go, suggestion.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/spec"
)

// SpotServicer defines the read operations the spot handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type SpotServicer interface {
	GetBySlug(ctx context.Context, slug string) (domain.Spot, bool, error)
	ListPublished(ctx context.Context, f domain.ListFilters) ([]domain.Spot, error)
}

// SuggestionServicer defines the intake operation POST /suggestions uses.
type SuggestionServicer interface {
	Submit(ctx context.Context, raw domain.RawSuggestion) (domain.Suggestion, error)
}

// ReadinessCheck is one dependency probed by GET /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	spots       SpotServicer
	suggestions SuggestionServicer
	checks      []ReadinessCheck
	log         *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithReadinessChecks adds dependencies that GET /readyz must reach.
func WithReadinessChecks(checks ...ReadinessCheck) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

// WithLogger sets the logger used for unexpected errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(spots SpotServicer, suggestions SuggestionServicer, opts ...Option) *Server {
	s := &Server{spots: spots, suggestions: suggestions, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the public read endpoints and the API description on r.
// Intake is mounted separately by SuggestionRoutes so callers can wrap it
// with write-only middleware.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/readyz", s.GetReady)
	r.Get("/spots", s.ListSpots)
	r.Get("/spots/{slug}", s.GetSpot)
	r.Get("/openapi.yaml", serveOpenAPI)
}

// SuggestionRoutes mounts POST /suggestions on r.
func (s *Server) SuggestionRoutes(r chi.Router) {
	r.Post("/suggestions", s.CreateSuggestion)
}

// Handler returns a router serving every endpoint with no extra middleware.
// Tests use it; main.go composes Routes and SuggestionRoutes itself.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	s.SuggestionRoutes(r)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
