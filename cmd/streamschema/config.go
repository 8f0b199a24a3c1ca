package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
)

const envPrefix = "STREAMSCHEMA_"

var (
	errUnsupportedConfigFormat = errors.New("unsupported config file format")
	errInvalidEnvValue         = errors.New("invalid environment value")
)

// Config holds everything streamschema needs to open a stream store.
type Config struct {
	// Connection is the database to talk to. It is optional with -emit-only.
	Connection sqlengine.ConnectionConfig `json:"connection" yaml:"connection"`

	// Dialect overrides the SQL dialect derived from the driver.
	Dialect sqlengine.Dialect `json:"dialect" yaml:"dialect"`

	// StreamTableMap overrides derived table names per stream name.
	StreamTableMap map[string]string `json:"stream_table_map" yaml:"stream_table_map"`

	// TypeDiscriminator adds the event_class column to created tables.
	TypeDiscriminator bool `json:"type_discriminator" yaml:"type_discriminator"`

	// UniqueVersions adds a unique constraint on the version column.
	UniqueVersions bool `json:"unique_versions" yaml:"unique_versions"`
}

// DefaultConfig returns a configuration with an in-memory SQLite connection.
func DefaultConfig() *Config {
	return &Config{
		Connection: sqlengine.ConnectionConfig{
			Driver: sqlengine.DriverSQLite,
			DSN:    ":memory:",
		},
		StreamTableMap: map[string]string{},
	}
}

// LoadFromFile loads the configuration from a YAML or JSON file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedConfigFormat, ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides the configuration with STREAMSCHEMA_ prefixed environment variables.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv(envPrefix + "DRIVER"); v != "" {
		cfg.Connection.Driver = sqlengine.Driver(v)
	}
	if v := os.Getenv(envPrefix + "DSN"); v != "" {
		cfg.Connection.DSN = v
	}
	if v := os.Getenv(envPrefix + "DIALECT"); v != "" {
		cfg.Dialect = sqlengine.Dialect(v)
	}

	if v := os.Getenv(envPrefix + "TYPE_DISCRIMINATOR"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sTYPE_DISCRIMINATOR=%q", errInvalidEnvValue, envPrefix, v)
		}
		cfg.TypeDiscriminator = enabled
	}

	if v := os.Getenv(envPrefix + "UNIQUE_VERSIONS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sUNIQUE_VERSIONS=%q", errInvalidEnvValue, envPrefix, v)
		}
		cfg.UniqueVersions = enabled
	}

	return nil
}

// Validate checks the connection and the dialect.
func (c *Config) Validate() error {
	if err := c.Connection.Validate(); err != nil {
		return err
	}

	switch c.Dialect {
	case "", sqlengine.DialectPostgres, sqlengine.DialectSQLite:
	default:
		return fmt.Errorf("%w: %q", eventstore.ErrUnsupportedDialect, string(c.Dialect))
	}

	for streamName, tableName := range c.StreamTableMap {
		if tableName == "" {
			return fmt.Errorf("%w: %q", eventstore.ErrEmptyMappedTableName, streamName)
		}
	}

	return nil
}

// Options translates the configuration into stream store options.
func (c *Config) Options() []sqlengine.Option {
	var options []sqlengine.Option

	if c.Dialect != "" {
		options = append(options, sqlengine.WithDialect(c.Dialect))
	}

	if len(c.StreamTableMap) > 0 {
		tableMap := make(eventstore.TableMap, len(c.StreamTableMap))
		for streamName, tableName := range c.StreamTableMap {
			tableMap[eventstore.StreamName(streamName)] = tableName
		}
		options = append(options, sqlengine.WithStreamTableMap(tableMap))
	}

	if c.TypeDiscriminator {
		options = append(options, sqlengine.WithTypeDiscriminator())
	}

	if c.UniqueVersions {
		options = append(options, sqlengine.WithUniqueVersions())
	}

	return options
}
