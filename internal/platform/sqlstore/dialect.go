// Package sqlstore implements the store interfaces on database/sql. Queries
// are written once with "?" placeholders; a Dialect adapts them and their
// errors to a concrete database.
package sqlstore

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/phrazzld/lexis/internal/store"
)

// Dialect adapts the shared SQL to one database engine.
type Dialect interface {
	// Name identifies the dialect in logs, e.g. "sqlite".
	Name() string

	// GooseDialect is the dialect name understood by goose.
	GooseDialect() string

	// Rebind rewrites "?" placeholders into the engine's native form.
	Rebind(query string) string

	// MapError translates driver errors into store sentinel errors.
	// It returns nil for nil and passes unknown errors through.
	MapError(err error) error

	// Migrations returns the engine's migration files at the FS root.
	Migrations() fs.FS
}

// conn runs rebound queries and maps their errors.
type conn struct {
	db      store.DBTX
	dialect Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.db.ExecContext(ctx, c.dialect.Rebind(query), args...)
	return res, c.dialect.MapError(err)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.db.QueryContext(ctx, c.dialect.Rebind(query), args...)
	return rows, c.dialect.MapError(err)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.dialect.Rebind(query), args...)
}

func (c conn) withTx(tx *sql.Tx) conn {
	return conn{db: tx, dialect: c.dialect}
}
