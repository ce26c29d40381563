package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// nameVector must match the expression of spots_name_fts_idx so the planner
// can use the GIN index.
const nameVector = `to_tsvector('simple', name)`

// List compiles q into a single SELECT and materializes the result.
func (r *pgSpotRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Spot, error) {
	sql, args, ok, err := compileListQuery(q)
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.List: %w", err)
	}
	if !ok {
		return []domain.Spot{}, nil
	}

	rows, err := r.db.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.List: %w", err)
	}
	spots, err := collectSpots(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SpotRepo.List: %w", err)
	}
	return spots, nil
}

// compileListQuery turns a listing description into SQL. ok is false when the
// query can match nothing (an active search with no indexable terms), in
// which case no SQL needs to run.
func compileListQuery(q domain.ListQuery) (sql string, args pgx.NamedArgs, ok bool, err error) {
	args = pgx.NamedArgs{}
	var where []string

	_, searching := q.Search()
	if searching {
		tsq := prefixTSQuery(q.Terms())
		if tsq == "" {
			return "", nil, false, nil
		}
		args["search_query"] = tsq
		where = append(where, nameVector+` @@ to_tsquery('simple', @search_query)`)
	}

	for i, p := range q.Predicates() {
		col, err := columnFor(p.Field)
		if err != nil {
			return "", nil, false, err
		}
		name := fmt.Sprintf("p%d", i)
		args[name] = p.Value
		where = append(where, col+" = @"+name)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(spotColumns)
	b.WriteString("\n\tFROM spots")
	if len(where) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(where, "\n\t  AND "))
	}
	b.WriteString("\n\tORDER BY ")
	if q.Ordering() == domain.OrderRelevance {
		b.WriteString(`ts_rank(` + nameVector + `, to_tsquery('simple', @search_query)) DESC, `)
	}
	b.WriteString("created_at, id")

	return b.String(), args, true, nil
}

// columnFor whitelists the columns a predicate may reference.
func columnFor(f domain.Field) (string, error) {
	switch f {
	case domain.FieldIsPublished, domain.FieldWifiQuality, domain.FieldFoodAvailable, domain.FieldCrowdLevel:
		return string(f), nil
	}
	return "", fmt.Errorf("unsupported filter field %q", f)
}

// prefixTSQuery builds "term:* & term:*". Every term is a prefix, not only
// the last one, so "blue" also matches "Bluebonnet" and "blue caf" matches
// "Bluebonnet Cafe"; exact words still rank first through ts_rank.
// Terms are letters and digits only, so no tsquery escaping is needed.
func prefixTSQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		parts = append(parts, t+":*")
	}
	return strings.Join(parts, " & ")
}
