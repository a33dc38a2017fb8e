// Package sqlitetest opens in-memory SQLite databases carrying the listing schema.
package sqlitetest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Schema mirrors db/migrations in SQLite's dialect.
const Schema = `
CREATE TABLE chair (
  id INTEGER PRIMARY KEY, name TEXT NOT NULL, description TEXT NOT NULL, thumbnail TEXT NOT NULL,
  price INTEGER NOT NULL, height INTEGER NOT NULL, width INTEGER NOT NULL, depth INTEGER NOT NULL,
  color TEXT NOT NULL, features TEXT NOT NULL, kind TEXT NOT NULL,
  popularity INTEGER NOT NULL, stock INTEGER NOT NULL
);
CREATE TABLE estate (
  id INTEGER PRIMARY KEY, name TEXT NOT NULL, description TEXT NOT NULL, thumbnail TEXT NOT NULL,
  address TEXT NOT NULL, latitude REAL NOT NULL, longitude REAL NOT NULL,
  rent INTEGER NOT NULL, door_height INTEGER NOT NULL, door_width INTEGER NOT NULL,
  features TEXT NOT NULL, popularity INTEGER NOT NULL
);`

// Open returns a fresh database closed at test cleanup.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection: every ":memory:" connection is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
