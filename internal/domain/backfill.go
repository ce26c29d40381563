package domain

// BackfillMode selects which spots a slug backfill touches.
type BackfillMode string

const (
	// BackfillAll re-derives the slug of every spot. Spots whose slug already
	// equals the derived value are left untouched.
	BackfillAll BackfillMode = "all"
	// BackfillMissing only assigns slugs to spots that have none.
	BackfillMissing BackfillMode = "missing"
)

// BackfillReport summarizes one backfill run.
type BackfillReport struct {
	Scanned   int
	Updated   int
	Unchanged int
	// Changes lists every slug that was rewritten, in processing order.
	Changes []SlugChange
}

// SlugChange records a single slug rewrite performed by a backfill.
type SlugChange struct {
	SpotName string
	OldSlug  string
	NewSlug  string
}
