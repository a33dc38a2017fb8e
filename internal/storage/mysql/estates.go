package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"isuumo/internal/domain"
)

func (r *Repo) InsertEstates(ctx context.Context, es []domain.Estate) (err error) {
	defer r.track("insert_estates", time.Now(), &err)
	if len(es) == 0 {
		return nil
	}
	return r.insertRows(ctx, insertEstatesPrefix, estatePlaceholders, len(es), func(i int) []any {
		e := es[i]
		return []any{e.ID, e.Name, e.Description, e.Thumbnail, e.Address, e.Latitude, e.Longitude,
			e.Rent, e.DoorHeight, e.DoorWidth, e.Features, e.Popularity}
	})
}

func (r *Repo) GetEstate(ctx context.Context, id int64) (e domain.Estate, err error) {
	defer r.track("get_estate", time.Now(), &err)
	var row estateRow
	if err := r.db.GetContext(ctx, &row, getEstateSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Estate{}, domain.ErrItemNotFound.Withf("estate %d not found", id)
		}
		return domain.Estate{}, err
	}
	return domain.Estate(row), nil
}

func (r *Repo) SearchEstates(ctx context.Context, q domain.ListingQuery) (p domain.EstatesPage, err error) {
	defer r.track("search_estates", time.Now(), &err)
	where, args, err := whereClause(estateFilterColumns, q.Filters)
	if err != nil {
		return domain.EstatesPage{}, err
	}
	count, rows, err := searchPage[estateRow](ctx, r.db, "estate", estateColumns, where, args, q)
	if err != nil {
		return domain.EstatesPage{}, err
	}
	return domain.EstatesPage{Count: count, Items: estatesOf(rows)}, nil
}

func (r *Repo) LowPricedEstates(ctx context.Context, limit int) (es []domain.Estate, err error) {
	defer r.track("low_priced_estates", time.Now(), &err)
	var rows []estateRow
	if err := r.db.SelectContext(ctx, &rows, lowPricedEstatesSQL, limit); err != nil {
		return nil, err
	}
	return estatesOf(rows), nil
}

func (r *Repo) EstatesInBoundingBox(ctx context.Context, bb domain.BoundingBox) (es []domain.Estate, err error) {
	defer r.track("estates_in_bounding_box", time.Now(), &err)
	var rows []estateRow
	if err := r.db.SelectContext(ctx, &rows, estatesInBoundingBoxSQL,
		bb.MaxLatitude, bb.MinLatitude, bb.MaxLongitude, bb.MinLongitude); err != nil {
		return nil, err
	}
	return estatesOf(rows), nil
}

func (r *Repo) EstatesAdmitting(ctx context.Context, d domain.Dimensions, limit int) (es []domain.Estate, err error) {
	defer r.track("estates_admitting", time.Now(), &err)
	orients := d.Orientations()
	args := make([]any, 0, 2*len(orients)+1)
	for _, o := range orients {
		args = append(args, o[0], o[1])
	}
	args = append(args, limit)

	var rows []estateRow
	if err := r.db.SelectContext(ctx, &rows, estatesAdmittingSQL, args...); err != nil {
		return nil, err
	}
	return estatesOf(rows), nil
}
