// Package service contains the business logic for the spots directory.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/internal/repo"
	"github.com/kasuboski/remote-work-directory/internal/slug"
)

// DefaultCreateAttempts bounds how many times Create re-assigns a slug after
// losing an insert race on the unique index.
const DefaultCreateAttempts = 5

// SpotService implements slug assignment and the public spot reads.
type SpotService struct {
	repo     repo.SpotRepo
	assigner slug.Assigner
	attempts int
}

// SpotOption customizes a SpotService.
type SpotOption func(*SpotService)

// WithMaxProbe caps how many slug candidates are checked per assignment.
func WithMaxProbe(n int) SpotOption {
	return func(s *SpotService) { s.assigner.MaxAttempts = n }
}

// WithCreateAttempts sets how many inserts Create tries before giving up.
func WithCreateAttempts(n int) SpotOption {
	return func(s *SpotService) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewSpotService constructs a SpotService backed by the provided SpotRepo.
func NewSpotService(r repo.SpotRepo, opts ...SpotOption) *SpotService {
	s := &SpotService{repo: r, attempts: DefaultCreateAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeriveSlug returns the base slug for name. It does not consult the store.
func (s *SpotService) DeriveSlug(name string) string {
	return slug.Derive(name)
}

// AssignUniqueSlug returns the first candidate slug for name that no spot
// other than excludeID holds. Pass uuid.Nil when creating a new spot.
func (s *SpotService) AssignUniqueSlug(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	got, err := s.assigner.Assign(ctx, name, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugTaken(ctx, candidate, excludeID)
	})
	if err != nil {
		return "", fmt.Errorf("service.SpotService.AssignUniqueSlug: %w", err)
	}
	return got, nil
}

// Create assigns a unique slug to spot and inserts it. If another writer
// claims the slug between the check and the insert, the unique index rejects
// the row and Create assigns again.
func (s *SpotService) Create(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
	if spot.Name == "" {
		return domain.Spot{}, domain.NewValidationError("name", "name is required")
	}
	spot = spot.WithDefaults()

	var lastErr error
	for range s.attempts {
		sl, err := s.AssignUniqueSlug(ctx, spot.Name, uuid.Nil)
		if err != nil {
			return domain.Spot{}, err
		}
		spot.Slug = sl

		created, err := s.repo.Create(ctx, spot)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrSlugConflict) {
			return domain.Spot{}, err
		}
		lastErr = err
	}
	return domain.Spot{}, fmt.Errorf("service.SpotService.Create: %d attempts: %w", s.attempts, lastErr)
}

// GetBySlug returns the published spot holding slug. ok is false when no
// published spot matches.
func (s *SpotService) GetBySlug(ctx context.Context, sl string) (domain.Spot, bool, error) {
	spot, err := s.repo.GetPublishedBySlug(ctx, sl)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Spot{}, false, nil
	}
	if err != nil {
		return domain.Spot{}, false, err
	}
	return spot, true, nil
}

// ListPublished runs the listing pipeline for f against published spots.
// The result is never nil.
func (s *SpotService) ListPublished(ctx context.Context, f domain.ListFilters) ([]domain.Spot, error) {
	spots, err := s.repo.List(ctx, domain.BuildListQuery(f))
	if err != nil {
		return nil, err
	}
	if spots == nil {
		spots = []domain.Spot{}
	}
	return spots, nil
}
