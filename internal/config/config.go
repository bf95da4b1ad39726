package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig contains all database-related configuration settings.
// For sqlite the URL is a file path or ":memory:"; for postgres it is a
// connection URL.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1,lte=100"`
}

// VocabularyConfig holds the settings of the vocabulary engine itself.
type VocabularyConfig struct {
	// Epoch is the ISO date day numbers count from. A database that already
	// stores an epoch keeps its own.
	Epoch               string `mapstructure:"epoch" validate:"required,datetime=2006-01-02"`
	ReferenceLanguage   string `mapstructure:"reference_language" validate:"required,min=2,max=16"`
	DefaultListLimit    int    `mapstructure:"default_list_limit" validate:"gte=1,lte=10000"`
	StrugglingThreshold int    `mapstructure:"struggling_threshold" validate:"gte=1"`
}
