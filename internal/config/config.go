// Package config loads service settings from configs/config.yml and LOGREADER_* env vars.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. LOGREADER_STORE_DRIVER.
const EnvPrefix = "LOGREADER"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port   string       `mapstructure:"port"`
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Upload UploadConfig `mapstructure:"upload"`
	Query  QueryConfig  `mapstructure:"query"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type QueryConfig struct {
	MaxLimit int `mapstructure:"max_limit"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

var errInvalidConfig = errors.New("invalid config")

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", "logs.db")
	v.SetDefault("upload.max_bytes", int64(32<<20))
	v.SetDefault("query.max_limit", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("%w: store.dsn is required for driver %q", errInvalidConfig, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: store.driver must be memory, sqlite or postgres, got %q", errInvalidConfig, c.Store.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("%w: upload.max_bytes must be positive", errInvalidConfig)
	}
	if c.Query.MaxLimit <= 0 {
		return fmt.Errorf("%w: query.max_limit must be positive", errInvalidConfig)
	}
	return nil
}
