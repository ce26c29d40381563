package repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCompileListQuery_PublishedOnly(t *testing.T) {
	sql, args, ok, err := compileListQuery(domain.BuildListQuery(domain.ListFilters{}))

	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, sql, "WHERE is_published = @p0")
	assert.Contains(t, sql, "ORDER BY created_at, id")
	assert.NotContains(t, sql, "ts_rank")
	assert.Equal(t, true, args["p0"])
}

func TestCompileListQuery_SearchAndFilters(t *testing.T) {
	q := domain.BuildListQuery(domain.ListFilters{
		Search:        ptr("blue bot"),
		WifiQuality:   ptr(domain.WifiExcellent),
		FoodAvailable: ptr(false),
		CrowdLevel:    ptr(domain.CrowdQuiet),
	})

	sql, args, ok, err := compileListQuery(q)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "blue:* & bot:*", args["search_query"])
	assert.Equal(t, "Excellent", args["p1"])
	assert.Equal(t, false, args["p2"])
	assert.Equal(t, "Quiet", args["p3"])

	// Every constraint is joined with AND; relevance ordering comes first.
	assert.Equal(t, 4, strings.Count(sql, "AND "))
	assert.NotContains(t, sql, " OR ")
	assert.Contains(t, sql, "ORDER BY ts_rank(to_tsvector('simple', name), to_tsquery('simple', @search_query)) DESC, created_at, id")
}

func TestCompileListQuery_SearchWithoutTerms(t *testing.T) {
	_, _, ok, err := compileListQuery(domain.BuildListQuery(domain.ListFilters{Search: ptr("?!")}))

	require.NoError(t, err)
	assert.False(t, ok, "a search with nothing indexable matches no rows")
}

func TestPrefixTSQuery(t *testing.T) {
	assert.Equal(t, "", prefixTSQuery(nil))
	assert.Equal(t, "cafe:*", prefixTSQuery([]string{"cafe"}))
	assert.Equal(t, "a:* & b:*", prefixTSQuery([]string{"a", "", "b"}))
}

func TestPrefixTSQuery_EveryTermIsAPrefix(t *testing.T) {
	q := domain.BuildListQuery(domain.ListFilters{Search: ptr("Blue Caf")})

	assert.Equal(t, "blue:* & caf:*", prefixTSQuery(q.Terms()))
}

func TestColumnFor_RejectsUnknownField(t *testing.T) {
	_, err := columnFor(domain.Field("name; DROP TABLE spots"))

	assert.Error(t, err)
}
