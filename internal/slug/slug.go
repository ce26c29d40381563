// Package slug derives URL-safe identifiers from display names and resolves
// collisions by probing numbered candidates.
//
// The package knows nothing about storage. Callers inject a TakenFunc that
// answers "does some other record already hold this slug?", which keeps the
// probing logic testable with an in-memory set.
package slug

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	pattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// FallbackBase is probed when a name contains no slug-able characters.
const FallbackBase = "spot"

// ErrExhausted is returned when a bounded Assigner runs out of attempts.
var ErrExhausted = errors.New("slug candidates exhausted")

// Derive lowercases name, replaces every maximal run of characters outside
// [a-z0-9] with a single hyphen, and trims hyphens from both ends.
//
//	Derive("Blue Bottle Coffee!") // "blue-bottle-coffee"
//	Derive("  --  ")              // ""
func Derive(name string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is a non-empty canonical slug.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Candidates yields base, base-1, base-2, ... without end.
func Candidates(base string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(base) {
			return
		}
		for n := 1; ; n++ {
			if !yield(base + "-" + strconv.Itoa(n)) {
				return
			}
		}
	}
}

// TakenFunc reports whether candidate is already held by another record.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// Assigner probes candidates in order until one is free.
// The zero value probes without limit.
type Assigner struct {
	// MaxAttempts caps the number of candidates checked. Zero means unbounded.
	MaxAttempts int
}

// Assign returns the first candidate for name that taken reports as free.
//
// The result is unique only at the moment of the check: another writer can
// claim the same candidate before the caller persists it. Callers that need
// strict uniqueness must write through a unique index and retry on conflict.
func (a Assigner) Assign(ctx context.Context, name string, taken TakenFunc) (string, error) {
	base := Derive(name)
	if base == "" {
		base = FallbackBase
	}

	attempts := 0
	for candidate := range Candidates(base) {
		if a.MaxAttempts > 0 && attempts >= a.MaxAttempts {
			return "", fmt.Errorf("slug.Assign: %w: %q after %d attempts", ErrExhausted, base, attempts)
		}
		attempts++

		held, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug.Assign: check %q: %w", candidate, err)
		}
		if !held {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slug.Assign: %w", ErrExhausted)
}

// Assign probes without limit. See Assigner.Assign.
func Assign(ctx context.Context, name string, taken TakenFunc) (string, error) {
	return Assigner{}.Assign(ctx, name, taken)
}
