package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// MetadataStore implements store.MetadataStore on the metadata table.
type MetadataStore struct {
	conn   conn
	logger *slog.Logger
}

// NewMetadataStore creates a MetadataStore on db.
func NewMetadataStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *MetadataStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MetadataStore{
		conn:   conn{db: db, dialect: dialect},
		logger: logger.With(slog.String("component", "metadata_store")),
	}
}

var _ store.MetadataStore = (*MetadataStore)(nil)

// Get implements store.MetadataStore.Get.
func (s *MetadataStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.queryRow(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrMetadataNotFound
		}
		return "", store.NewStoreError("metadata", "get", "failed to read metadata", s.conn.dialect.MapError(err))
	}
	return value, nil
}

// Set implements store.MetadataStore.Set.
func (s *MetadataStore) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.exec(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return store.NewStoreError("metadata", "set", "failed to write metadata", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("metadata stored",
		slog.String("key", key))
	return nil
}

// SetIfAbsent implements store.MetadataStore.SetIfAbsent.
func (s *MetadataStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	_, err := s.conn.exec(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO NOTHING
	`, key, value)
	if err != nil {
		return "", store.NewStoreError("metadata", "set_if_absent", "failed to write metadata", err)
	}
	return s.Get(ctx, key)
}
