package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "modernc.org/sqlite"
)

// DefaultDSN is the on-disk database used when none is configured.
const DefaultDSN = "file:commonapply.db?_pragma=foreign_keys(1)"

// OpenSQLite opens a SQLite database and wraps it in an ent SQL driver.
// SQLite allows a single writer, so the pool is pinned to one connection.
func OpenSQLite(ctx context.Context, dsn string) (*entsql.Driver, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return entsql.OpenDB(dialect.SQLite, db), nil
}
