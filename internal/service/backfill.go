package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// ErrBackfillUnstable is returned when slugs keep moving after the pass limit.
var ErrBackfillUnstable = errors.New("backfill did not settle")

// BackfillSlugs recomputes slugs for existing spots in (created_at, id)
// order. Each spot is excluded from its own collision check, and a row is
// only written when its slug actually changes.
//
// Re-slugging a later spot can free a slug an earlier spot wanted, so passes
// repeat until one writes nothing. The report covers every pass: each spot
// appears once with its original and final slug, and a spot that ends where
// it started is not reported as changed. A second run is therefore a no-op.
//
// Updates are applied one at a time; a failure part way through leaves the
// earlier updates in place and returns the report so far alongside the error.
func (s *SpotService) BackfillSlugs(ctx context.Context, mode domain.BackfillMode) (domain.BackfillReport, error) {
	var missingOnly bool
	switch mode {
	case domain.BackfillAll, "":
	case domain.BackfillMissing:
		missingOnly = true
	default:
		return domain.BackfillReport{Changes: []domain.SlugChange{}},
			domain.NewValidationError("mode", fmt.Sprintf("unknown backfill mode %q", mode))
	}

	run := backfillRun{changed: map[uuid.UUID]int{}}
	for pass := 0; ; pass++ {
		spots, err := s.repo.ListForBackfill(ctx, missingOnly)
		if err != nil {
			return run.report(), fmt.Errorf("service.SpotService.BackfillSlugs: %w", err)
		}
		if pass == 0 {
			run.scanned = len(spots)
		} else if pass > run.scanned {
			return run.report(), fmt.Errorf("service.SpotService.BackfillSlugs: %w after %d passes", ErrBackfillUnstable, pass)
		}

		wrote, err := s.backfillPass(ctx, spots, pass == 0, &run)
		if err != nil {
			return run.report(), err
		}
		if wrote == 0 {
			return run.report(), nil
		}
	}
}

// backfillPass re-slugs spots in order and returns how many rows it wrote.
func (s *SpotService) backfillPass(ctx context.Context, spots []domain.Spot, first bool, run *backfillRun) (int, error) {
	wrote := 0
	for i, spot := range spots {
		if err := ctx.Err(); err != nil {
			return wrote, err
		}
		if first {
			run.progress = i + 1
		}

		next, err := s.AssignUniqueSlug(ctx, spot.Name, spot.ID)
		if err != nil {
			return wrote, fmt.Errorf("service.SpotService.BackfillSlugs: spot %s: %w", spot.ID, err)
		}
		if next == spot.Slug {
			continue
		}
		if err := s.repo.UpdateSlug(ctx, spot.ID, next); err != nil {
			return wrote, fmt.Errorf("service.SpotService.BackfillSlugs: spot %s: %w", spot.ID, err)
		}
		wrote++
		run.record(spot, next)
	}
	return wrote, nil
}

// backfillRun accumulates changes across passes, one entry per spot.
type backfillRun struct {
	scanned  int
	progress int // spots reached in the first pass
	changes  []domain.SlugChange
	changed  map[uuid.UUID]int
}

func (r *backfillRun) record(spot domain.Spot, next string) {
	if i, ok := r.changed[spot.ID]; ok {
		r.changes[i].NewSlug = next
		return
	}
	r.changed[spot.ID] = len(r.changes)
	r.changes = append(r.changes, domain.SlugChange{SpotName: spot.Name, OldSlug: spot.Slug, NewSlug: next})
}

func (r *backfillRun) report() domain.BackfillReport {
	rep := domain.BackfillReport{Scanned: r.scanned, Changes: []domain.SlugChange{}}
	if r.progress < r.scanned {
		rep.Scanned = r.progress
	}
	for _, c := range r.changes {
		if c.NewSlug != c.OldSlug {
			rep.Changes = append(rep.Changes, c)
		}
	}
	rep.Updated = len(rep.Changes)
	rep.Unchanged = rep.Scanned - rep.Updated
	return rep
}
