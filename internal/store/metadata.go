package store

import "context"

// Well-known metadata keys.
const (
	MetadataEpoch         = "birth_date"
	MetadataSchemaVersion = "schema_version"
)

// MetadataStore persists small key/value settings that belong to the database
// rather than to the process configuration.
type MetadataStore interface {
	// Get returns the value of key, or ErrMetadataNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// SetIfAbsent stores value under key unless the key already has a value,
	// and returns the value in effect afterwards.
	SetIfAbsent(ctx context.Context, key, value string) (string, error)
}
