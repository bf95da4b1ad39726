package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. LEXIS_DATABASE_URL for database.url.
const EnvPrefix = "LEXIS"

var keys = []string{
	"server.port",
	"server.log_level",
	"database.driver",
	"database.url",
	"database.max_open_conns",
	"vocabulary.epoch",
	"vocabulary.reference_language",
	"vocabulary.default_list_limit",
	"vocabulary.struggling_threshold",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, "")
}

func load(v *viper.Viper, searchPath string) (*Config, error) {
	setDefaults(v)

	if searchPath != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(searchPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || searchPath == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper knows about.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.url", "lexis.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("vocabulary.epoch", "2025-10-10")
	v.SetDefault("vocabulary.reference_language", "en")
	v.SetDefault("vocabulary.default_list_limit", 100)
	v.SetDefault("vocabulary.struggling_threshold", 5)
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, LogLevel: "info"},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			URL:          "lexis.db",
			MaxOpenConns: 10,
		},
		Vocabulary: VocabularyConfig{
			Epoch:               "2025-10-10",
			ReferenceLanguage:   "en",
			DefaultListLimit:    100,
			StrugglingThreshold: 5,
		},
	}
}
