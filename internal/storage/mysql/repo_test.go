package mysql_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isuumo/internal/domain"
	mysqlrepo "isuumo/internal/storage/mysql"
	"isuumo/internal/storage/mysql/sqlitetest"
)

func newRepo(t *testing.T) *mysqlrepo.Repo {
	t.Helper()
	return mysqlrepo.New(sqlitetest.Open(t))
}

func chair(id, price, popularity, stock int64) domain.Chair {
	return domain.Chair{
		ID: id, Name: fmt.Sprintf("chair-%d", id), Price: price,
		Height: 100, Width: 50, Depth: 60, Color: "黒", Kind: "座椅子", Features: "肘掛け付き",
		Popularity: popularity, Stock: stock,
	}
}

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func chairID(c domain.Chair) int64   { return c.ID }
func estateID(e domain.Estate) int64 { return e.ID }

func TestRepo_SearchChairs_OrderCountAndPages(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	var cs []domain.Chair
	for i := int64(1); i <= 23; i++ {
		cs = append(cs, chair(i, 1000*i, i%4, 1))
	}
	cs = append(cs, chair(24, 5000, 99, 0)) // sold out, never listed
	require.NoError(t, repo.InsertChairs(ctx, cs))

	q := domain.ListingQuery{Filters: []domain.Predicate{domain.InStock}, PerPage: 5}
	var seen []int64
	for page := 0; ; page++ {
		q.Page = page
		p, err := repo.SearchChairs(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, 23, p.Count, "count is independent of the page")
		if len(p.Items) == 0 {
			break
		}
		for i := 1; i < len(p.Items); i++ {
			a, b := p.Items[i-1], p.Items[i]
			assert.True(t, a.Popularity > b.Popularity || (a.Popularity == b.Popularity && a.ID < b.ID))
		}
		seen = append(seen, ids(p.Items, chairID)...)
	}

	assert.Len(t, seen, 23)
	uniq := map[int64]bool{}
	for _, id := range seen {
		uniq[id] = true
	}
	assert.Len(t, uniq, 23, "pages are disjoint")
	assert.False(t, uniq[24])
	assert.Equal(t, []int64{3, 7, 11, 15, 19, 23}, seen[:6])
}

func TestRepo_SearchChairs_RangeBoundaries(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{
		chair(1, 2999, 0, 1), chair(2, 3000, 0, 1), chair(3, 5999, 0, 1), chair(4, 6000, 0, 1),
	}))

	p, err := repo.SearchChairs(ctx, domain.ListingQuery{
		Filters: []domain.Predicate{domain.RangePredicate{Field: domain.FieldPrice, Min: 3000, Max: 6000}, domain.InStock},
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids(p.Items, chairID))

	p, err = repo.SearchChairs(ctx, domain.ListingQuery{
		Filters: []domain.Predicate{domain.RangePredicate{Field: domain.FieldPrice, Min: domain.Unbounded, Max: 3000}},
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(p.Items, chairID))
}

func TestRepo_SearchChairs_FeatureSubstring(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	a := chair(1, 100, 0, 1)
	a.Features = "肘掛け付き,低反発"
	b := chair(2, 100, 0, 1)
	b.Features = "低反発"
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{a, b}))

	p, err := repo.SearchChairs(ctx, domain.ListingQuery{
		Filters: []domain.Predicate{
			domain.ContainsTagPredicate{Field: domain.FieldFeatures, Tag: "低反発"},
			domain.ContainsTagPredicate{Field: domain.FieldFeatures, Tag: "肘掛け"},
		},
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(p.Items, chairID))
	assert.EqualValues(t, 1, p.Count)
}

func TestRepo_GetChair(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	want := chair(7, 4200, 3, 2)
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{want}))

	got, err := repo.GetChair(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = repo.GetChair(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRepo_ReserveChair(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{chair(1, 100, 0, 1)}))

	require.NoError(t, repo.ReserveChair(ctx, 1))
	assert.ErrorIs(t, repo.ReserveChair(ctx, 1), domain.ErrOutOfStock)
	assert.ErrorIs(t, repo.ReserveChair(ctx, 2), domain.ErrOutOfStock)

	c, err := repo.GetChair(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, c.Stock)
}

func TestRepo_ReserveChair_Concurrent(t *testing.T) {
	for _, tc := range []struct{ callers, stock int64 }{{20, 5}, {3, 10}} {
		t.Run(fmt.Sprintf("%d_callers_%d_stock", tc.callers, tc.stock), func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{chair(1, 100, 0, tc.stock)}))

			var ok, sold atomic.Int64
			var wg sync.WaitGroup
			for range tc.callers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					switch err := repo.ReserveChair(ctx, 1); {
					case err == nil:
						ok.Add(1)
					case domain.KindOf(err) == domain.KindOutOfStock:
						sold.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, min(tc.callers, tc.stock), ok.Load())
			assert.Equal(t, tc.callers, ok.Load()+sold.Load())
			c, err := repo.GetChair(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, max(0, tc.stock-tc.callers), c.Stock)
		})
	}
}

func TestRepo_ReserveChair_CancelledContextRollsBack(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.InsertChairs(context.Background(), []domain.Chair{chair(1, 100, 0, 2)}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, repo.ReserveChair(ctx, 1))

	c, err := repo.GetChair(context.Background(), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.Stock)
}

func TestRepo_LowPricedChairs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{
		chair(1, 500, 0, 1), chair(2, 100, 0, 0), chair(3, 300, 0, 1), chair(4, 300, 0, 1),
	}))

	cs, err := repo.LowPricedChairs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(cs, chairID))
}

func estate(id int64, lat, lng float64, w, h, pop int64) domain.Estate {
	return domain.Estate{
		ID: id, Name: fmt.Sprintf("estate-%d", id), Address: "東京都",
		Latitude: lat, Longitude: lng, Rent: 50000 + id, DoorWidth: w, DoorHeight: h,
		Features: "バス・トイレ別", Popularity: pop,
	}
}

func TestRepo_EstatesInBoundingBox_Inclusive(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertEstates(ctx, []domain.Estate{
		estate(1, 35, 139, 100, 100, 1),     // corner
		estate(2, 35.5, 139.5, 100, 100, 5), // inside
		estate(3, 36.01, 139.5, 100, 100, 9),
	}))

	es, err := repo.EstatesInBoundingBox(ctx, domain.BoundingBox{MinLatitude: 35, MaxLatitude: 36, MinLongitude: 139, MaxLongitude: 140})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(es, estateID))
}

func TestRepo_EstatesAdmitting_AnyOrientation(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertEstates(ctx, []domain.Estate{
		estate(1, 35, 139, 60, 100, 1), // fits w=50,h=100 upright
		estate(2, 35, 139, 100, 50, 2), // fits on its side
		estate(3, 35, 139, 40, 40, 3),  // too small
		estate(4, 35, 139, 60, 50, 4),  // fits depth-first: 60 x 50
	}))

	es, err := repo.EstatesAdmitting(ctx, domain.Dimensions{Width: 50, Height: 100, Depth: 60}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 1}, ids(es, estateID))

	for _, e := range es {
		assert.True(t, domain.Dimensions{Width: 50, Height: 100, Depth: 60}.FitsThrough(e.DoorWidth, e.DoorHeight))
	}
}

func TestRepo_SearchEstates_AndLowPriced(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertEstates(ctx, []domain.Estate{
		estate(1, 35, 139, 80, 200, 1),
		estate(2, 35, 139, 110, 200, 2),
		estate(3, 35, 139, 79, 200, 3),
	}))

	p, err := repo.SearchEstates(ctx, domain.ListingQuery{
		Filters: []domain.Predicate{domain.RangePredicate{Field: domain.FieldDoorWidth, Min: 80, Max: 110}},
		PerPage: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(p.Items, estateID))

	_, err = repo.SearchEstates(ctx, domain.ListingQuery{
		Filters: []domain.Predicate{domain.InStock},
		PerPage: 10,
	})
	assert.Error(t, err, "stock is not an estate column")

	es, err := repo.LowPricedEstates(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(es, estateID))

	_, err = repo.GetEstate(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRepo_InsertIsAllOrNothing(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertChairs(ctx, []domain.Chair{chair(1, 100, 0, 1)}))

	err := repo.InsertChairs(ctx, []domain.Chair{chair(2, 100, 0, 1), chair(1, 100, 0, 1)})
	require.Error(t, err)

	_, err = repo.GetChair(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRepo_InsertChunks(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	var cs []domain.Chair
	for i := int64(1); i <= 2500; i++ {
		cs = append(cs, chair(i, i, 0, 1))
	}
	require.NoError(t, repo.InsertChairs(ctx, cs))

	p, err := repo.SearchChairs(ctx, domain.ListingQuery{Filters: []domain.Predicate{domain.InStock}, PerPage: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2500, p.Count)
}
