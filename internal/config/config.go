package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/source"
)

const (
	// DefaultDepth is the number of reference hops resolved when none is given.
	DefaultDepth = 1

	// ModeConvention resolves references by field naming.
	ModeConvention = "convention"

	// ModeReference resolves explicit {"$ref", "id"} markers.
	ModeReference = "reference"
)

// Config holds all configuration for the denorm CLI.
type Config struct {
	Populate PopulateConfig `mapstructure:"populate"`
	Source   SourceConfig   `mapstructure:"source"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PopulateConfig selects the resolver and how its result is written.
type PopulateConfig struct {
	Mode     string `mapstructure:"mode"`
	Depth    int    `mapstructure:"depth"`
	Strategy string `mapstructure:"strategy"`
	Output   string `mapstructure:"output"`
}

// SourceConfig says where the graph comes from: a file, or a set of tables.
type SourceConfig struct {
	Graph       string   `mapstructure:"graph"`
	Driver      string   `mapstructure:"driver"`
	DSN         string   `mapstructure:"dsn"`
	Tables      []string `mapstructure:"tables"`
	JSONColumns []string `mapstructure:"json_columns"`
	UUIDColumns []string `mapstructure:"uuid_columns"`
	Concurrency int      `mapstructure:"concurrency"`
}

// String returns a representation of SourceConfig with the DSN masked.
func (c SourceConfig) String() string {
	return fmt.Sprintf("SourceConfig{Graph:%s, Driver:%s, DSN:%s, Tables:%v}",
		c.Graph, c.Driver, maskDSN(c.DSN), c.Tables)
}

// maskDSN hides everything between "://" and "@", where credentials live.
func maskDSN(dsn string) string {
	i := strings.Index(dsn, "://")
	j := strings.LastIndex(dsn, "@")
	if i < 0 || j < i {
		if dsn == "" {
			return ""
		}
		return "***"
	}
	return dsn[:i+3] + "***" + dsn[j:]
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, the config file and environment
// variables prefixed with DENORM_. An empty path searches for denorm.yaml in
// $HOME/.denorm and the working directory; a missing file is not an error
// unless path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("populate.mode", ModeConvention)
	v.SetDefault("populate.depth", DefaultDepth)
	v.SetDefault("populate.strategy", denorm.Lazy.String())
	v.SetDefault("populate.output", string(source.JSON))

	v.SetDefault("source.concurrency", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("denorm")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir(), ".denorm"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DENORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration fields are set and consistent.
// It does not require a source; commands check that themselves.
func (c *Config) Validate() error {
	switch c.Populate.Mode {
	case ModeConvention, ModeReference:
	default:
		return denorm.NewConfigError("populate.mode", c.Populate.Mode, "must be convention or reference")
	}
	if c.Populate.Depth < 0 {
		return denorm.NewConfigError("populate.depth", c.Populate.Depth, "must be >= 0")
	}
	if _, err := denorm.ParseStrategy(c.Populate.Strategy); err != nil {
		return err
	}
	if _, err := source.ParseFormat(c.Populate.Output); err != nil {
		return err
	}
	if c.Source.Graph != "" && c.Source.Driver != "" {
		return denorm.NewConfigError("source", c.Source, "graph and driver are mutually exclusive")
	}
	if c.Source.Driver != "" {
		switch c.Source.Driver {
		case source.SQLite, source.Postgres, source.MySQL:
		default:
			return denorm.NewConfigError("source.driver", c.Source.Driver, "must be sqlite, postgres or mysql")
		}
		if c.Source.DSN == "" {
			return denorm.NewConfigError("source.dsn", nil, "required when source.driver is set")
		}
		if len(c.Source.Tables) == 0 {
			return denorm.NewConfigError("source.tables", nil, "required when source.driver is set")
		}
	}
	if c.Source.Concurrency < 0 {
		return denorm.NewConfigError("source.concurrency", c.Source.Concurrency, "must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return denorm.NewConfigError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return denorm.NewConfigError("logging.format", c.Logging.Format, "must be text or json")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
