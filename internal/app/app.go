// Package app wires the vocabulary engine together. It owns the order in which
// dependencies are built (configuration, database, migrations, stored
// settings, calendar, stores, events, service) so the server and the CLI
// start from the same graph.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/lexis/internal/calendar"
	"github.com/phrazzld/lexis/internal/config"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/postgres"
	"github.com/phrazzld/lexis/internal/platform/sqlite"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/store"
)

// App holds the shared dependencies of a running process.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *sql.DB
	Dialect sqlstore.Dialect

	Stores     *sqlstore.Stores
	Calendar   *calendar.Calendar
	Events     *events.InMemoryEventEmitter
	Vocabulary service.VocabularyService

	// SchemaVersion is the migration version in effect after startup.
	SchemaVersion int64
}

// Option customizes New.
type Option func(*options)

type options struct {
	clock   calendar.Clock
	migrate bool
}

// WithClock replaces the system clock.
func WithClock(c calendar.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithoutMigrations skips applying pending migrations at startup. The schema
// must already be current.
func WithoutMigrations() Option {
	return func(o *options) { o.migrate = false }
}

// New opens the configured database, brings its schema up to date and builds
// the vocabulary service on top of it. Close releases the database.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: calendar.SystemClock{}, migrate: true}
	for _, opt := range opts {
		opt(&o)
	}

	db, dialect, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, DB: db, Dialect: dialect}

	if err := app.init(ctx, o); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("application initialized",
		slog.String("driver", dialect.Name()),
		slog.Int64("schema_version", app.SchemaVersion),
		slog.String("epoch", app.Calendar.Epoch().Format(calendar.DateLayout)),
		slog.Int("current_day", app.Calendar.Today()))
	return app, nil
}

func (a *App) init(ctx context.Context, o options) error {
	if o.migrate {
		if err := sqlstore.Migrate(ctx, a.DB, a.Dialect, a.Logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	version, err := sqlstore.RunMigrations(ctx, a.DB, a.Dialect, sqlstore.MigrateVersion, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	a.SchemaVersion = version

	a.Stores = sqlstore.NewStores(a.DB, a.Dialect, a.Logger)

	if err := a.Stores.Metadata.Set(ctx, store.MetadataSchemaVersion, strconv.FormatInt(version, 10)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	epoch, err := EnsureEpoch(ctx, a.Stores.Metadata, a.Config.Vocabulary.Epoch)
	if err != nil {
		return err
	}
	a.Calendar = calendar.New(epoch, o.clock)

	a.Events = events.NewInMemoryEventEmitter(a.Logger)
	a.Events.RegisterHandler(events.NewLoggingHandler(a.Logger))

	a.Vocabulary, err = service.NewVocabularyService(
		a.DB,
		service.Repositories{
			Entries:    a.Stores.Entries,
			Encounters: a.Stores.Encounters,
			Mastered:   a.Stores.Mastered,
		},
		a.Calendar,
		a.Events,
		service.Options{
			DefaultListLimit:    a.Config.Vocabulary.DefaultListLimit,
			StrugglingThreshold: a.Config.Vocabulary.StrugglingThreshold,
		},
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary service: %w", err)
	}
	return nil
}

// EnsureEpoch returns the epoch stored in the database, storing configured
// first when none is set. An existing database keeps its epoch even when the
// configuration changes, so stored day numbers stay meaningful.
func EnsureEpoch(ctx context.Context, metadata store.MetadataStore, configured string) (time.Time, error) {
	if configured == "" {
		configured = calendar.DefaultEpoch
	}
	if _, err := calendar.ParseEpoch(configured); err != nil {
		return time.Time{}, err
	}

	stored, err := metadata.SetIfAbsent(ctx, store.MetadataEpoch, configured)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load epoch: %w", err)
	}
	return calendar.ParseEpoch(stored)
}

// OpenDatabase opens the configured backend and returns the dialect its
// stores and migrations use.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, sqlstore.Dialect, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, sqlite.Dialect{}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return db, postgres.Dialect{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("error closing database connection", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("application shutdown completed")
	return nil
}
