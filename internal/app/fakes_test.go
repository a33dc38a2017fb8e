package app_test

import (
	"context"
	"sort"
	"sync"

	"isuumo/internal/domain"
)

// ---- fakes ----

type fakeChairs struct {
	mu       sync.Mutex
	byID     map[int64]domain.Chair
	inserted []domain.Chair
	lastQ    domain.ListingQuery
	err      error
}

func newFakeChairs(cs ...domain.Chair) *fakeChairs {
	f := &fakeChairs{byID: map[int64]domain.Chair{}}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeChairs) InsertChairs(ctx context.Context, cs []domain.Chair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, cs...)
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return nil
}

func (f *fakeChairs) ReserveChair(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c, ok := f.byID[id]
	if !ok || c.Stock <= 0 {
		return domain.ErrOutOfStock
	}
	c.Stock--
	f.byID[id] = c
	return nil
}

func (f *fakeChairs) GetChair(ctx context.Context, id int64) (domain.Chair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Chair{}, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return domain.Chair{}, domain.ErrItemNotFound
	}
	return c, nil
}

func (f *fakeChairs) SearchChairs(ctx context.Context, q domain.ListingQuery) (domain.ChairsPage, error) {
	f.lastQ = q
	return domain.ChairsPage{}, f.err
}

func (f *fakeChairs) LowPricedChairs(ctx context.Context, limit int) ([]domain.Chair, error) {
	return nil, f.err
}

type fakeEstates struct {
	byID      map[int64]domain.Estate
	inserted  []domain.Estate
	lastQ     domain.ListingQuery
	lastBox   domain.BoundingBox
	lastDims  domain.Dimensions
	lastLimit int
	err       error
}

func newFakeEstates(es ...domain.Estate) *fakeEstates {
	f := &fakeEstates{byID: map[int64]domain.Estate{}}
	for _, e := range es {
		f.byID[e.ID] = e
	}
	return f
}

// ordered returns every estate ordered popularity DESC, id ASC.
func (f *fakeEstates) ordered() []domain.Estate {
	out := make([]domain.Estate, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeEstates) InsertEstates(ctx context.Context, es []domain.Estate) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, es...)
	return nil
}

func (f *fakeEstates) GetEstate(ctx context.Context, id int64) (domain.Estate, error) {
	if f.err != nil {
		return domain.Estate{}, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return domain.Estate{}, domain.ErrItemNotFound
	}
	return e, nil
}

func (f *fakeEstates) SearchEstates(ctx context.Context, q domain.ListingQuery) (domain.EstatesPage, error) {
	f.lastQ = q
	return domain.EstatesPage{}, f.err
}

func (f *fakeEstates) LowPricedEstates(ctx context.Context, limit int) ([]domain.Estate, error) {
	f.lastLimit = limit
	return nil, f.err
}

func (f *fakeEstates) EstatesInBoundingBox(ctx context.Context, bb domain.BoundingBox) ([]domain.Estate, error) {
	f.lastBox = bb
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Estate
	for _, e := range f.ordered() {
		if bb.Contains(e.Location()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEstates) EstatesAdmitting(ctx context.Context, d domain.Dimensions, limit int) ([]domain.Estate, error) {
	f.lastDims, f.lastLimit = d, limit
	return nil, f.err
}

type published struct {
	subject string
	v       any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{subject, v})
	return nil
}
