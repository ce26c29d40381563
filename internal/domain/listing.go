package domain

import (
	"strings"
	"unicode"
)

// ListFilters carries the optional public listing parameters.
// A nil pointer means the filter was not supplied. FoodAvailable distinguishes
// an explicit false from absent.
type ListFilters struct {
	Search        *string
	WifiQuality   *WifiQuality
	FoodAvailable *bool
	CrowdLevel    *CrowdLevel
}

// Field names a filterable spot attribute. The values match the column names
// in the spots table.
type Field string

const (
	FieldIsPublished   Field = "is_published"
	FieldWifiQuality   Field = "wifi_quality"
	FieldFoodAvailable Field = "food_available"
	FieldCrowdLevel    Field = "crowd_level_typical"
)

// Predicate is a single equality constraint. Predicates in a ListQuery are
// always combined with AND.
type Predicate struct {
	Field Field
	Value any
}

// Ordering selects how a ListQuery's results are sorted.
type Ordering int

const (
	// OrderInsertion returns rows in the order they were created.
	OrderInsertion Ordering = iota
	// OrderRelevance returns rows by descending full-text relevance.
	OrderRelevance
)

// ListQuery is the finalized description of a listing read. It is a value:
// stages return modified copies and never mutate their input.
type ListQuery struct {
	search     string
	terms      []string
	predicates []Predicate
}

// Search returns the trimmed search text and whether search is active.
func (q ListQuery) Search() (string, bool) {
	return q.search, q.search != ""
}

// Terms returns the normalized search terms. It is empty when search is not
// active, and also when the search text contained nothing indexable.
func (q ListQuery) Terms() []string {
	return append([]string(nil), q.terms...)
}

// Predicates returns the equality constraints in stage order.
func (q ListQuery) Predicates() []Predicate {
	return append([]Predicate(nil), q.predicates...)
}

// Ordering reports relevance ordering when search is active.
func (q ListQuery) Ordering() Ordering {
	if q.search != "" {
		return OrderRelevance
	}
	return OrderInsertion
}

func (q ListQuery) withPredicate(field Field, value any) ListQuery {
	next := make([]Predicate, len(q.predicates), len(q.predicates)+1)
	copy(next, q.predicates)
	q.predicates = append(next, Predicate{Field: field, Value: value})
	return q
}

// ListStage contributes one step of the listing pipeline.
type ListStage func(q ListQuery, f ListFilters) ListQuery

// listStages is the fixed pipeline order. Search comes first so relevance
// ordering wins over any later stage.
var listStages = []ListStage{
	searchStage,
	publishedStage,
	wifiStage,
	foodStage,
	crowdStage,
}

// BuildListQuery runs every listing stage over an empty query.
func BuildListQuery(f ListFilters) ListQuery {
	var q ListQuery
	for _, stage := range listStages {
		q = stage(q, f)
	}
	return q
}

func searchStage(q ListQuery, f ListFilters) ListQuery {
	if f.Search == nil {
		return q
	}
	s := strings.TrimSpace(*f.Search)
	if s == "" {
		return q
	}
	q.search = s
	q.terms = SearchTerms(s)
	return q
}

func publishedStage(q ListQuery, _ ListFilters) ListQuery {
	return q.withPredicate(FieldIsPublished, true)
}

func wifiStage(q ListQuery, f ListFilters) ListQuery {
	if f.WifiQuality == nil || *f.WifiQuality == "" {
		return q
	}
	return q.withPredicate(FieldWifiQuality, string(*f.WifiQuality))
}

func foodStage(q ListQuery, f ListFilters) ListQuery {
	if f.FoodAvailable == nil {
		return q
	}
	return q.withPredicate(FieldFoodAvailable, *f.FoodAvailable)
}

func crowdStage(q ListQuery, f ListFilters) ListQuery {
	if f.CrowdLevel == nil || *f.CrowdLevel == "" {
		return q
	}
	return q.withPredicate(FieldCrowdLevel, string(*f.CrowdLevel))
}

// SearchTerms lowercases s and splits it into runs of letters and digits,
// matching how the 'simple' text search configuration tokenizes names.
func SearchTerms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
