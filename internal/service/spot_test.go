package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/internal/repo"
	"github.com/kasuboski/remote-work-directory/internal/service"
	"github.com/kasuboski/remote-work-directory/internal/slug"
)

// mockSpotRepo is a hand-written test double for repo.SpotRepo.
// Each method is a function field; set only the ones your test needs.
type mockSpotRepo struct {
	create             func(ctx context.Context, spot domain.Spot) (domain.Spot, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Spot, error)
	getPublishedBySlug func(ctx context.Context, slug string) (domain.Spot, error)
	slugTaken          func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	updateSlug         func(ctx context.Context, id uuid.UUID, slug string) error
	list               func(ctx context.Context, q domain.ListQuery) ([]domain.Spot, error)
	listForBackfill    func(ctx context.Context, missingOnly bool) ([]domain.Spot, error)
}

func (m *mockSpotRepo) Create(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
	return m.create(ctx, spot)
}
func (m *mockSpotRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Spot, error) {
	return m.getByID(ctx, id)
}
func (m *mockSpotRepo) GetPublishedBySlug(ctx context.Context, slug string) (domain.Spot, error) {
	return m.getPublishedBySlug(ctx, slug)
}
func (m *mockSpotRepo) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	return m.slugTaken(ctx, slug, excludeID)
}
func (m *mockSpotRepo) UpdateSlug(ctx context.Context, id uuid.UUID, slug string) error {
	return m.updateSlug(ctx, id, slug)
}
func (m *mockSpotRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Spot, error) {
	return m.list(ctx, q)
}
func (m *mockSpotRepo) ListForBackfill(ctx context.Context, missingOnly bool) ([]domain.Spot, error) {
	return m.listForBackfill(ctx, missingOnly)
}

// compile-time check: mockSpotRepo must satisfy repo.SpotRepo.
var _ repo.SpotRepo = (*mockSpotRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// spotStore is an in-memory table of spots that backs a mockSpotRepo.
// It keeps insertion order, which stands in for (created_at, id).
type spotStore struct {
	spots []domain.Spot
}

func newSpotStore(spots ...domain.Spot) *spotStore {
	s := &spotStore{}
	for _, sp := range spots {
		if sp.ID == uuid.Nil {
			sp.ID = uuid.New()
		}
		s.spots = append(s.spots, sp)
	}
	return s
}

func (s *spotStore) taken(slug string, excludeID uuid.UUID) bool {
	for _, sp := range s.spots {
		if sp.Slug == slug && sp.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *spotStore) slugs() []string {
	out := make([]string, 0, len(s.spots))
	for _, sp := range s.spots {
		out = append(out, sp.Slug)
	}
	return out
}

func (s *spotStore) repo() *mockSpotRepo {
	return &mockSpotRepo{
		slugTaken: func(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
			return s.taken(slug, excludeID), nil
		},
		create: func(_ context.Context, spot domain.Spot) (domain.Spot, error) {
			if s.taken(spot.Slug, uuid.Nil) {
				return domain.Spot{}, domain.ErrSlugConflict
			}
			spot.ID = uuid.New()
			s.spots = append(s.spots, spot)
			return spot, nil
		},
		updateSlug: func(_ context.Context, id uuid.UUID, slug string) error {
			if s.taken(slug, id) {
				return domain.ErrSlugConflict
			}
			for i := range s.spots {
				if s.spots[i].ID == id {
					s.spots[i].Slug = slug
					return nil
				}
			}
			return domain.ErrNotFound
		},
		listForBackfill: func(_ context.Context, missingOnly bool) ([]domain.Spot, error) {
			out := []domain.Spot{}
			for _, sp := range s.spots {
				if missingOnly && sp.Slug != "" {
					continue
				}
				out = append(out, sp)
			}
			return out, nil
		},
	}
}

// ---- DeriveSlug / AssignUniqueSlug -----------------------------------------

func TestSpotService_DeriveSlug(t *testing.T) {
	svc := service.NewSpotService(&mockSpotRepo{})

	assert.Equal(t, "blue-bottle-coffee", svc.DeriveSlug("Blue Bottle Coffee!"))
	assert.Equal(t, "", svc.DeriveSlug("!!!"))
}

func TestSpotService_AssignUniqueSlug_FirstFree(t *testing.T) {
	store := newSpotStore(
		domain.Spot{Name: "Cafe", Slug: "cafe"},
		domain.Spot{Name: "Cafe", Slug: "cafe-1"},
	)
	svc := service.NewSpotService(store.repo())

	got, err := svc.AssignUniqueSlug(context.Background(), "Café?", uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, "caf", got)

	got, err = svc.AssignUniqueSlug(context.Background(), "Cafe", uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, "cafe-2", got)
}

func TestSpotService_AssignUniqueSlug_ExcludesSelf(t *testing.T) {
	self := domain.Spot{ID: uuid.New(), Name: "Cafe", Slug: "cafe"}
	store := newSpotStore(self)
	svc := service.NewSpotService(store.repo())

	got, err := svc.AssignUniqueSlug(context.Background(), "Cafe", self.ID)

	require.NoError(t, err)
	assert.Equal(t, "cafe", got)
}

func TestSpotService_AssignUniqueSlug_RepoError(t *testing.T) {
	repoErr := errors.New("connection reset")
	svc := service.NewSpotService(&mockSpotRepo{
		slugTaken: func(context.Context, string, uuid.UUID) (bool, error) { return false, repoErr },
	})

	_, err := svc.AssignUniqueSlug(context.Background(), "Cafe", uuid.Nil)

	assert.ErrorIs(t, err, repoErr)
}

func TestSpotService_AssignUniqueSlug_MaxProbe(t *testing.T) {
	svc := service.NewSpotService(&mockSpotRepo{
		slugTaken: func(context.Context, string, uuid.UUID) (bool, error) { return true, nil },
	}, service.WithMaxProbe(3))

	_, err := svc.AssignUniqueSlug(context.Background(), "Cafe", uuid.Nil)

	assert.ErrorIs(t, err, slug.ErrExhausted)
}

// ---- Create ----------------------------------------------------------------

func TestSpotService_Create_AssignsSlug(t *testing.T) {
	store := newSpotStore(domain.Spot{Name: "Epoch Coffee", Slug: "epoch-coffee"})
	svc := service.NewSpotService(store.repo())

	got, err := svc.Create(context.Background(), domain.Spot{Name: "Epoch Coffee", IsPublished: true})

	require.NoError(t, err)
	assert.Equal(t, "epoch-coffee-1", got.Slug)
	assert.Equal(t, domain.WifiUnknown, got.WifiQuality)
}

func TestSpotService_Create_RetriesAfterLostRace(t *testing.T) {
	store := newSpotStore()
	r := store.repo()
	insert := r.create
	raced := false
	r.create = func(ctx context.Context, spot domain.Spot) (domain.Spot, error) {
		if !raced {
			// Another writer claims the slug between the probe and our insert.
			raced = true
			store.spots = append(store.spots, domain.Spot{ID: uuid.New(), Name: spot.Name, Slug: spot.Slug})
		}
		return insert(ctx, spot)
	}
	svc := service.NewSpotService(r)

	got, err := svc.Create(context.Background(), domain.Spot{Name: "Cafe"})

	require.NoError(t, err)
	assert.Equal(t, "cafe-1", got.Slug)
	assert.ElementsMatch(t, []string{"cafe", "cafe-1"}, store.slugs())
}

func TestSpotService_Create_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	svc := service.NewSpotService(&mockSpotRepo{
		slugTaken: func(context.Context, string, uuid.UUID) (bool, error) { return false, nil },
		create: func(context.Context, domain.Spot) (domain.Spot, error) {
			calls++
			return domain.Spot{}, domain.ErrSlugConflict
		},
	}, service.WithCreateAttempts(2))

	_, err := svc.Create(context.Background(), domain.Spot{Name: "Cafe"})

	assert.ErrorIs(t, err, domain.ErrSlugConflict)
	assert.Equal(t, 2, calls)
}

func TestSpotService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	calls := 0
	svc := service.NewSpotService(&mockSpotRepo{
		slugTaken: func(context.Context, string, uuid.UUID) (bool, error) { return false, nil },
		create: func(context.Context, domain.Spot) (domain.Spot, error) {
			calls++
			return domain.Spot{}, repoErr
		},
	})

	_, err := svc.Create(context.Background(), domain.Spot{Name: "Cafe"})

	assert.ErrorIs(t, err, repoErr)
	assert.Equal(t, 1, calls, "only slug conflicts are retried")
}

func TestSpotService_Create_MissingName(t *testing.T) {
	svc := service.NewSpotService(&mockSpotRepo{})

	_, err := svc.Create(context.Background(), domain.Spot{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- GetBySlug -------------------------------------------------------------

func TestSpotService_GetBySlug_Found(t *testing.T) {
	want := domain.Spot{ID: uuid.New(), Name: "Cafe", Slug: "cafe", IsPublished: true}
	svc := service.NewSpotService(&mockSpotRepo{
		getPublishedBySlug: func(_ context.Context, s string) (domain.Spot, error) {
			assert.Equal(t, "cafe", s)
			return want, nil
		},
	})

	got, ok, err := svc.GetBySlug(context.Background(), "cafe")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
}

func TestSpotService_GetBySlug_Absent(t *testing.T) {
	svc := service.NewSpotService(&mockSpotRepo{
		getPublishedBySlug: func(context.Context, string) (domain.Spot, error) {
			return domain.Spot{}, domain.ErrNotFound
		},
	})

	_, ok, err := svc.GetBySlug(context.Background(), "nope")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSpotService_GetBySlug_RepoError(t *testing.T) {
	repoErr := errors.New("timeout")
	svc := service.NewSpotService(&mockSpotRepo{
		getPublishedBySlug: func(context.Context, string) (domain.Spot, error) {
			return domain.Spot{}, repoErr
		},
	})

	_, _, err := svc.GetBySlug(context.Background(), "cafe")

	assert.ErrorIs(t, err, repoErr)
}

// ---- ListPublished ---------------------------------------------------------

func TestSpotService_ListPublished_BuildsQuery(t *testing.T) {
	search := "  blue  "
	var got domain.ListQuery
	svc := service.NewSpotService(&mockSpotRepo{
		list: func(_ context.Context, q domain.ListQuery) ([]domain.Spot, error) {
			got = q
			return []domain.Spot{{Name: "Blue Bottle"}}, nil
		},
	})

	spots, err := svc.ListPublished(context.Background(), domain.ListFilters{Search: &search})

	require.NoError(t, err)
	assert.Len(t, spots, 1)
	text, ok := got.Search()
	assert.True(t, ok)
	assert.Equal(t, "blue", text)
	assert.Equal(t, domain.OrderRelevance, got.Ordering())
	assert.Contains(t, got.Predicates(), domain.Predicate{Field: domain.FieldIsPublished, Value: true})
}

func TestSpotService_ListPublished_Empty(t *testing.T) {
	svc := service.NewSpotService(&mockSpotRepo{
		list: func(context.Context, domain.ListQuery) ([]domain.Spot, error) { return nil, nil },
	})

	got, err := svc.ListPublished(context.Background(), domain.ListFilters{})

	require.NoError(t, err)
	// Should return an empty slice, not nil, so it encodes as [].
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSpotService_ListPublished_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	svc := service.NewSpotService(&mockSpotRepo{
		list: func(context.Context, domain.ListQuery) ([]domain.Spot, error) { return nil, repoErr },
	})

	_, err := svc.ListPublished(context.Background(), domain.ListFilters{})

	assert.ErrorIs(t, err, repoErr)
}
