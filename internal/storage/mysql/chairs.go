package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"isuumo/internal/domain"
)

func (r *Repo) InsertChairs(ctx context.Context, cs []domain.Chair) (err error) {
	defer r.track("insert_chairs", time.Now(), &err)
	if len(cs) == 0 {
		return nil
	}
	return r.insertRows(ctx, insertChairsPrefix, chairPlaceholders, len(cs), func(i int) []any {
		c := cs[i]
		return []any{c.ID, c.Name, c.Description, c.Thumbnail, c.Price, c.Height, c.Width, c.Depth,
			c.Color, c.Features, c.Kind, c.Popularity, c.Stock}
	})
}

// ReserveChair locks the row, checks stock and decrements it in one transaction.
func (r *Repo) ReserveChair(ctx context.Context, id int64) (err error) {
	defer r.track("reserve_chair", time.Now(), &err)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stock int64
	if err = tx.GetContext(ctx, &stock, r.lockStockSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOutOfStock.Withf("chair %d does not exist", id)
		}
		return err
	}
	if stock <= 0 {
		return domain.ErrOutOfStock.Withf("chair %d is sold out", id)
	}

	res, err := tx.ExecContext(ctx, decrementChairStockSQL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return domain.ErrOutOfStock.Withf("chair %d is sold out", id)
	}
	return tx.Commit()
}

func (r *Repo) GetChair(ctx context.Context, id int64) (c domain.Chair, err error) {
	defer r.track("get_chair", time.Now(), &err)
	var row chairRow
	if err := r.db.GetContext(ctx, &row, getChairSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Chair{}, domain.ErrItemNotFound.Withf("chair %d not found", id)
		}
		return domain.Chair{}, err
	}
	return domain.Chair(row), nil
}

func (r *Repo) SearchChairs(ctx context.Context, q domain.ListingQuery) (p domain.ChairsPage, err error) {
	defer r.track("search_chairs", time.Now(), &err)
	where, args, err := whereClause(chairFilterColumns, q.Filters)
	if err != nil {
		return domain.ChairsPage{}, err
	}
	count, rows, err := searchPage[chairRow](ctx, r.db, "chair", chairColumns, where, args, q)
	if err != nil {
		return domain.ChairsPage{}, err
	}
	return domain.ChairsPage{Count: count, Items: chairsOf(rows)}, nil
}

func (r *Repo) LowPricedChairs(ctx context.Context, limit int) (cs []domain.Chair, err error) {
	defer r.track("low_priced_chairs", time.Now(), &err)
	var rows []chairRow
	if err := r.db.SelectContext(ctx, &rows, lowPricedChairsSQL, limit); err != nil {
		return nil, err
	}
	return chairsOf(rows), nil
}
