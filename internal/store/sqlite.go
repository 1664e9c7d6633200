package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // driver 100% Go
)

// Open opens the SQLite store at the connection string from the runtime
// config. A single connection avoids writer contention.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates the cart and orders tables. Uniqueness of a cart line per
// (user_id, book_id) is enforced by the repository's upsert logic, not by a
// constraint.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS cart(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  book_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  surname TEXT NOT NULL,
  post_code INTEGER NOT NULL,
  address TEXT NOT NULL,
  city TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cart_user ON cart(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}
