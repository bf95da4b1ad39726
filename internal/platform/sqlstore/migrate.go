package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrationTableName is the table goose records applied versions in.
const MigrationTableName = "schema_migrations"

// Migration commands accepted by RunMigrations.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateReset   = "reset"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// slogGooseLogger forwards goose output to slog. Fatalf does not exit; goose
// also returns the error to the caller.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate applies every pending migration of dialect to db.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) error {
	_, err := RunMigrations(ctx, db, dialect, MigrateUp, logger)
	return err
}

// RunMigrations executes a goose command and returns the schema version
// afterwards.
func RunMigrations(
	ctx context.Context,
	db *sql.DB,
	dialect Dialect,
	command string,
	logger *slog.Logger,
) (int64, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("dialect", dialect.Name()),
		slog.String("command", command),
	)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(dialect.Migrations())
	goose.SetTableName(MigrationTableName)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}

	start := time.Now()
	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, db, ".")
	case MigrateReset:
		err = goose.ResetContext(ctx, db, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, ".")
	case MigrateVersion:
	default:
		return 0, fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, or version)",
			command,
		)
	}
	if err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return 0, fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	log.Debug("migration command finished",
		slog.Int64("version", version),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return version, nil
}
