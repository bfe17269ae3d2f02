package config

import (
	"errors"
	"fmt"
	"os"

	env "github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

type DatabaseType string

const (
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypeMemory     DatabaseType = "memory"
	DatabaseTypeNone       DatabaseType = "none"
)

// DefaultFile is read when no config file is named explicitly. It is
// optional.
const DefaultFile = "typegen.toml"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the generator configuration. Values come from Default, then
// the TOML file, then TYPEGEN_* environment variables.
type Config struct {
	Input          string `env:"INPUT" toml:"input"`
	TypesOutput    string `env:"TYPES_OUTPUT" toml:"types_output"`
	ReexportOutput string `env:"REEXPORT_OUTPUT" toml:"reexport_output"`
	TypesImport    string `env:"TYPES_IMPORT" toml:"types_import"`

	ExportType         bool `env:"EXPORT_TYPE" toml:"export_type"`
	DefaultNonNullable bool `env:"DEFAULT_NON_NULLABLE" toml:"default_non_nullable"`
	PathParamsAsTypes  bool `env:"PATH_PARAMS_AS_TYPES" toml:"path_params_as_types"`

	Rules              []string `env:"RULES" envSeparator:"," toml:"rules"`
	NullableProperties []string `env:"NULLABLE_PROPERTIES" envSeparator:"," toml:"nullable_properties"`

	Validate bool `env:"VALIDATE" toml:"validate"`
	Verbose  bool `env:"VERBOSE" toml:"verbose"`

	DatabaseType DatabaseType `env:"DATABASE_TYPE" toml:"database_type"`
	DatabaseURL  string       `env:"DATABASE_URL" toml:"database_url"`

	ServerAddress string `env:"SERVER_ADDRESS" toml:"server_address"`
	Schedule      string `env:"SCHEDULE" toml:"schedule"`
	Version       string `env:"VERSION" toml:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Input:              "./taxonomy-api.json",
		TypesOutput:        "./taxonomy-api-openapi.ts",
		ReexportOutput:     "./taxonomy-api.ts",
		TypesImport:        "./taxonomy-api-openapi",
		ExportType:         true,
		DefaultNonNullable: false,
		PathParamsAsTypes:  false,
		Rules:              []string{"strip-empty-marker", "nullable-ref", "binary-format"},
		NullableProperties: []string{"qualityEvaluation"},
		DatabaseType:       DatabaseTypeNone,
		DatabaseURL:        ".typegen/history.db",
		ServerAddress:      ":8080",
		Version:            "dev",
	}
}

// Load builds the configuration. path names a TOML file; when empty,
// DefaultFile is used if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == "":
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "TYPEGEN_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseType {
	case DatabaseTypePostgreSQL, DatabaseTypeSQLite, DatabaseTypeMemory, DatabaseTypeNone:
	default:
		return fmt.Errorf("%w: unknown database type %q", ErrInvalidConfig, c.DatabaseType)
	}
	if c.Input == "" || c.TypesOutput == "" || c.ReexportOutput == "" {
		return fmt.Errorf("%w: input and output paths must not be empty", ErrInvalidConfig)
	}
	return nil
}
