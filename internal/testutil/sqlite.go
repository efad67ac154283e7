// Package testutil provides an in-memory SQLite database shaped like the
// PostgreSQL schema in sql/schema.sql.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE coworking_spaces (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	address        TEXT NOT NULL,
	city           TEXT NOT NULL,
	country        TEXT NOT NULL,
	description    TEXT,
	price_per_hour REAL NOT NULL CHECK (price_per_hour >= 0),
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);

CREATE TABLE reservations (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	coworking_space_id INTEGER NOT NULL REFERENCES coworking_spaces (id) ON DELETE CASCADE,
	user_id            INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	start_time         DATETIME NOT NULL,
	end_time           DATETIME NOT NULL,
	hourly_rate        REAL NOT NULL CHECK (hourly_rate >= 0),
	total_price        REAL NOT NULL CHECK (total_price >= 0),
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL,
	CHECK (end_time > start_time)
);
`

// NewDB opens a private in-memory database with foreign keys enforced.
// The pool is pinned to one connection so every query sees the same memory.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	d, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)
	d.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = d.Close() })

	if _, err := d.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return d
}
