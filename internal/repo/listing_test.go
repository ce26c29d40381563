package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/internal/repo"
)

func ptr[T any](v T) *T { return &v }

func names(spots []domain.Spot) []string {
	out := make([]string, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.Name)
	}
	return out
}

func list(t *testing.T, r repo.SpotRepo, f domain.ListFilters) []domain.Spot {
	t.Helper()
	got, err := r.List(context.Background(), domain.BuildListQuery(f))
	require.NoError(t, err)
	return got
}

// seedListing creates a small directory covering every filter dimension.
func seedListing(t *testing.T, r repo.SpotRepo) {
	t.Helper()

	a := spotFixture("Blue Blue Room", "blue-blue-room")
	a.WifiQuality, a.FoodAvailable, a.CrowdLevel = domain.WifiExcellent, true, domain.CrowdQuiet

	b := spotFixture("Bluebonnet Cafe", "bluebonnet-cafe")
	b.WifiQuality, b.FoodAvailable, b.CrowdLevel = domain.WifiExcellent, false, domain.CrowdBusy

	c := spotFixture("Red Door Library", "red-door-library")
	c.WifiQuality, c.FoodAvailable, c.CrowdLevel = domain.WifiFair, true, domain.CrowdQuiet

	hidden := spotFixture("Blue Secret", "blue-secret")
	hidden.WifiQuality, hidden.FoodAvailable = domain.WifiExcellent, true
	hidden.IsPublished = false

	for _, s := range []domain.Spot{a, b, c, hidden} {
		mustCreateSpot(t, r, s)
	}
}

func TestSpotRepo_List_NoFilters_PublishedOnlyInInsertionOrder(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{})

	for _, s := range got {
		assert.True(t, s.IsPublished, "%s is unpublished", s.Name)
	}
	assert.Subset(t, names(got), []string{"Blue Blue Room", "Bluebonnet Cafe", "Red Door Library"})
	assert.NotContains(t, names(got), "Blue Secret")
}

func TestSpotRepo_List_Search_EveryTermMatchesAsPrefix(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	assert.Equal(t, []string{"Bluebonnet Cafe"}, names(list(t, r, domain.ListFilters{Search: ptr("bluebon")})))
	assert.Equal(t, []string{"Bluebonnet Cafe"}, names(list(t, r, domain.ListFilters{Search: ptr("blue caf")})))
}

func TestSpotRepo_List_Search_RelevanceOrder(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{Search: ptr("blue")})

	require.Equal(t, []string{"Blue Blue Room", "Bluebonnet Cafe"}, names(got))
}

func TestSpotRepo_List_Search_NoMatch(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	assert.Empty(t, list(t, r, domain.ListFilters{Search: ptr("zeppelin")}))
	assert.Empty(t, list(t, r, domain.ListFilters{Search: ptr("!!!")}))
}

func TestSpotRepo_List_BlankSearch_EqualsNoSearch(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	assert.Equal(t,
		names(list(t, r, domain.ListFilters{})),
		names(list(t, r, domain.ListFilters{Search: ptr("   ")})),
	)
}

func TestSpotRepo_List_Conjunction(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{
		WifiQuality:   ptr(domain.WifiExcellent),
		FoodAvailable: ptr(true),
	})

	assert.Equal(t, []string{"Blue Blue Room"}, names(got))
}

func TestSpotRepo_List_FoodFalse(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{FoodAvailable: ptr(false)})

	for _, s := range got {
		assert.False(t, s.FoodAvailable)
	}
	assert.Contains(t, names(got), "Bluebonnet Cafe")
}

func TestSpotRepo_List_SearchWithFilters(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{
		Search:     ptr("blue"),
		CrowdLevel: ptr(domain.CrowdBusy),
	})

	assert.Equal(t, []string{"Bluebonnet Cafe"}, names(got))
}

func TestSpotRepo_List_UnknownEnumMatchesNothing(t *testing.T) {
	r := newTestSpotRepo(t)
	seedListing(t, r)

	got := list(t, r, domain.ListFilters{WifiQuality: ptr(domain.WifiQuality("Blazing"))})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
