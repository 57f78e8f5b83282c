package query

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/favorites/store"
	"github.com/tair/furniture-storefront/internal/testutil"
)

// seeded returns a registry whose visitor "v1" saved desk, chair, sofa and
// stool one day apart, stool being the newest
func seeded(t *testing.T, clock *testutil.StubClock) *store.Registry {
	t.Helper()
	ctx := context.Background()
	r, err := store.NewRegistry(repository.NewMemoryStore(0), 16,
		store.WithAdapterOptions(storage.WithClock(clock)))
	require.NoError(t, err)

	s := r.Get(ctx, "v1")
	for _, p := range []domain.Product{
		{ID: "1", Name: "Desk", Category: "Office"},
		{ID: "2", Name: "Ergonomic Chair", Category: "Office", Model: "EC-200"},
		{ID: "3", Name: "corner sofa", Category: "Living Room"},
		{ID: "4", Name: "Bar Stool"},
	} {
		require.True(t, s.Add(ctx, p).Success)
		clock.Advance(24 * time.Hour)
	}
	return r
}

func ids(items []domain.FavoriteItem) []domain.ProductID {
	out := make([]domain.ProductID, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestSearchFavorites(t *testing.T) {
	ctx := context.Background()
	h := NewSearchFavoritesHandler(seeded(t, testutil.FixedClock()))

	tests := []struct {
		name string
		q    SearchFavoritesQuery
		want []domain.ProductID
	}{
		{"defaults to newest first", SearchFavoritesQuery{}, []domain.ProductID{"4", "3", "2", "1"}},
		{"blank query is no filter", SearchFavoritesQuery{Query: "   "}, []domain.ProductID{"4", "3", "2", "1"}},
		{"text filter", SearchFavoritesQuery{Query: "CHAIR"}, []domain.ProductID{"2"}},
		{"category filter", SearchFavoritesQuery{Category: "office"}, []domain.ProductID{"2", "1"}},
		{"unknown category", SearchFavoritesQuery{Category: "Unknown"}, []domain.ProductID{"4"}},
		{"name ascending", SearchFavoritesQuery{SortBy: SortByName, Order: OrderAsc}, []domain.ProductID{"4", "3", "1", "2"}},
		{"category descending", SearchFavoritesQuery{SortBy: SortByCategory}, []domain.ProductID{"4", "2", "1", "3"}},
		{"oldest first", SearchFavoritesQuery{Order: OrderAsc}, []domain.ProductID{"1", "2", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.q.VisitorID = "v1"
			got, err := h.Handle(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	r := seeded(t, testutil.FixedClock())
	h := NewSearchFavoritesHandler(r)

	_, err := h.Handle(ctx, SearchFavoritesQuery{VisitorID: "v1", SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductID{"4", "3", "2", "1"}, ids(r.Get(ctx, "v1").State().Favorites))
}

func TestSearchRejectsUnknownSort(t *testing.T) {
	h := NewSearchFavoritesHandler(seeded(t, testutil.FixedClock()))

	_, err := h.Handle(context.Background(), SearchFavoritesQuery{VisitorID: "v1", SortBy: "price"})
	assert.ErrorIs(t, err, ErrInvalidSort)
	_, err = h.Handle(context.Background(), SearchFavoritesQuery{VisitorID: "v1", Order: "up"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestGetStats(t *testing.T) {
	clock := testutil.FixedClock()
	r := seeded(t, clock)
	clock.Advance(3 * 24 * time.Hour)

	stats, err := NewGetStatsHandler(r, clock).Handle(context.Background(), GetStatsQuery{VisitorID: "v1"})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Categories)
	assert.Equal(t, map[string]int{"Office": 2, "Living Room": 1, "Unknown": 1}, stats.ByCategory)
	require.NotNil(t, stats.Newest)
	require.NotNil(t, stats.Oldest)
	assert.Equal(t, domain.ProductID("4"), stats.Newest.ID)
	assert.Equal(t, domain.ProductID("1"), stats.Oldest.ID)
	// Now is exactly a week after the first add.
	assert.Equal(t, 3, stats.AddedLastWeek)
}

func TestGetStatsEmpty(t *testing.T) {
	r, err := store.NewRegistry(repository.NewMemoryStore(0), 4)
	require.NoError(t, err)

	stats, err := NewGetStatsHandler(r, testutil.FixedClock()).Handle(context.Background(), GetStatsQuery{VisitorID: "new"})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.Newest)
	assert.Empty(t, stats.ByCategory)
}

func TestRecentAndGroup(t *testing.T) {
	ctx := context.Background()
	r := seeded(t, testutil.FixedClock())

	recent, err := NewRecentFavoritesHandler(r).Handle(ctx, RecentFavoritesQuery{VisitorID: "v1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductID{"4", "3"}, ids(recent))

	groups, err := NewGroupByCategoryHandler(r).Handle(ctx, GroupByCategoryQuery{VisitorID: "v1"})
	require.NoError(t, err)
	total := 0
	for _, v := range groups {
		total += len(v)
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, []domain.ProductID{"2", "1"}, ids(groups["Office"]))
}

func TestExportFilename(t *testing.T) {
	clock := testutil.FixedClock()
	r := seeded(t, clock)

	out, err := NewExportFavoritesHandler(r).Handle(context.Background(), ExportFavoritesQuery{VisitorID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "favorites-2024-01-19.json", out.Filename)
	assert.Equal(t, 4, out.Export.Count)
	assert.Equal(t, domain.CurrentVersion, out.Export.Version)
}

func TestShareFavorites(t *testing.T) {
	ctx := context.Background()
	r := seeded(t, testutil.FixedClock())
	h := NewShareFavoritesHandler(r, "https://shop.example.com/")

	link, err := h.Handle(ctx, ShareFavoritesQuery{VisitorID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "My Favorite Furniture", link.Title)
	assert.Equal(t, "Check out my 4 favorite furniture items", link.Text)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", u.Host)
	assert.Equal(t, "/favorites", u.Path)
	assert.Equal(t, "4,3,2,1", u.Query().Get("ids"))

	_, err = h.Handle(ctx, ShareFavoritesQuery{VisitorID: "nobody"})
	assert.ErrorIs(t, err, domain.ErrNothingToShare)
}
