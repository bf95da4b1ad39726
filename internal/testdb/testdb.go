package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/lexis/internal/platform/postgres"
	"github.com/phrazzld/lexis/internal/platform/sqlite"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds setup work against a test database.
const TestTimeout = 10 * time.Second

// DB is a migrated test database and the dialect its stores need.
type DB struct {
	*sql.DB
	Dialect sqlstore.Dialect
}

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests, taken
// from DATABASE_URL and then LEXIS_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("LEXIS_TEST_DB_URL")
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL URL is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// NewSQLite returns a migrated in-memory SQLite database closed at cleanup.
func NewSQLite(t *testing.T) *DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err, "failed to open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlite.Dialect{}, nil), "failed to migrate sqlite")
	return &DB{DB: db, Dialect: sqlite.Dialect{}}
}

// NewPostgres returns a migrated PostgreSQL database whose tables are emptied
// at cleanup. It skips the test when no database URL is configured.
func NewPostgres(t *testing.T) *DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url, 4)
	require.NoError(t, err, "failed to connect to postgres")
	require.NoError(t, sqlstore.Migrate(ctx, db, postgres.Dialect{}, nil), "failed to migrate postgres")

	t.Cleanup(func() {
		_, _ = db.Exec(`TRUNCATE encounters, vocabulary, mastered, metadata`)
		_ = db.Close()
	})
	return &DB{DB: db, Dialect: postgres.Dialect{}}
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
