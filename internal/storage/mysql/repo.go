package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"isuumo/internal/adapters/observability"
	"isuumo/internal/domain"
)

// insertChunk bounds placeholders per INSERT well under both MySQL's and SQLite's limits.
const insertChunk = 1000

type chairRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Thumbnail   string `db:"thumbnail"`
	Price       int64  `db:"price"`
	Height      int64  `db:"height"`
	Width       int64  `db:"width"`
	Depth       int64  `db:"depth"`
	Color       string `db:"color"`
	Features    string `db:"features"`
	Kind        string `db:"kind"`
	Popularity  int64  `db:"popularity"`
	Stock       int64  `db:"stock"`
}

type estateRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Thumbnail   string  `db:"thumbnail"`
	Address     string  `db:"address"`
	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	Rent        int64   `db:"rent"`
	DoorHeight  int64   `db:"door_height"`
	DoorWidth   int64   `db:"door_width"`
	Features    string  `db:"features"`
	Popularity  int64   `db:"popularity"`
}

func chairsOf(rows []chairRow) []domain.Chair {
	out := make([]domain.Chair, len(rows))
	for i, r := range rows {
		out[i] = domain.Chair(r)
	}
	return out
}

func estatesOf(rows []estateRow) []domain.Estate {
	out := make([]domain.Estate, len(rows))
	for i, r := range rows {
		out[i] = domain.Estate(r)
	}
	return out
}

// Repo implements domain.ChairRepository and domain.EstateRepository on a relational store.
type Repo struct {
	db           *sqlx.DB
	lockStockSQL string
}

// New wraps db. Row locks are requested only when the driver is MySQL.
func New(db *sqlx.DB) *Repo {
	lock := lockChairStockSQL
	if db.DriverName() == "mysql" {
		lock += " FOR UPDATE"
	}
	return &Repo{db: db, lockStockSQL: lock}
}

var (
	_ domain.ChairRepository  = (*Repo)(nil)
	_ domain.EstateRepository = (*Repo)(nil)
)

// track classifies the operation's error and records it. Use as
// `defer r.track("op", time.Now(), &err)` with a named error result.
func (r *Repo) track(op string, start time.Time, errp *error) {
	*errp = classify(*errp)
	observability.ObserveStore(op, *errp, time.Since(start))
}

// classify turns connectivity failures into ErrStoreUnavailable and leaves everything else alone.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if unavailable(err) {
		return domain.ErrStoreUnavailable.Wrap(err)
	}
	return err
}

func unavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldrv.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1040, 1205, 1213: // too many connections, lock wait timeout, deadlock
			return true
		}
	}
	return false
}

// insertRows runs chunked multi-row INSERTs inside one transaction.
func (r *Repo) insertRows(ctx context.Context, prefix, placeholders string, n int, args func(i int) []any) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for lo := 0; lo < n; lo += insertChunk {
		hi := min(lo+insertChunk, n)
		values := make([]string, 0, hi-lo)
		var vals []any
		for i := lo; i < hi; i++ {
			values = append(values, placeholders)
			vals = append(vals, args(i)...)
		}
		if _, err := tx.ExecContext(ctx, prefix+strings.Join(values, ","), vals...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// searchPage runs the count and the page concurrently against the same WHERE clause.
func searchPage[T any](ctx context.Context, db *sqlx.DB, table, columns, where string, args []any, q domain.ListingQuery) (int64, []T, error) {
	var (
		count int64
		rows  []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.GetContext(gctx, &count, "SELECT COUNT(*) FROM "+table+where, args...)
	})
	g.Go(func() error {
		pageArgs := append(append(make([]any, 0, len(args)+2), args...), q.PerPage, q.Offset())
		return db.SelectContext(gctx, &rows,
			"SELECT "+columns+" FROM "+table+where+listingOrder+" LIMIT ? OFFSET ?", pageArgs...)
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	return count, rows, nil
}
