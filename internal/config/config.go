package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig represents the main application configuration
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Library  LibraryConfig  `mapstructure:"library"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Version  VersionConfig  `mapstructure:"version"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig represents the embedded SQLite store configuration.
type DatabaseConfig struct {
	Path         string `mapstructure:"path"`
	JournalMode  string `mapstructure:"journal_mode"`
	Synchronous  string `mapstructure:"synchronous"`
	ForeignKeys  bool   `mapstructure:"foreign_keys"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// LibraryConfig describes the read-only music root and the service's
// writable data directory.
type LibraryConfig struct {
	MountPath string `mapstructure:"mount_path"`
	DataDir   string `mapstructure:"data_dir"`
}

// RedisConfig backs the asynq scan-dispatch queue.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// VersionConfig reports the build identity surfaced in /health and in the
// Metadata Client's User-Agent header.
type VersionConfig struct {
	AppVersion string `mapstructure:"app_version"`
	GitSHA     string `mapstructure:"git_sha"`
}

// DSN builds the SQLite connection string with the pragmas the scanner and
// discography writers rely on for concurrent readers during a scan.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s?_journal_mode=%s&_synchronous=%s&_foreign_keys=%s",
		d.Path, d.JournalMode, d.Synchronous, boolParam(d.ForeignKeys))
}

func boolParam(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// LoadConfig loads application configuration from various sources
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 4000)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)

	viper.SetDefault("database.path", "/data/crate.db")
	viper.SetDefault("database.journal_mode", "WAL")
	viper.SetDefault("database.synchronous", "NORMAL")
	viper.SetDefault("database.foreign_keys", true)
	viper.SetDefault("database.max_open_conns", 8)
	viper.SetDefault("database.max_idle_conns", 4)

	viper.SetDefault("library.mount_path", "/music")
	viper.SetDefault("library.data_dir", "/data")

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", 5*time.Second)

	viper.SetDefault("version.app_version", "dev")
	viper.SetDefault("version.git_sha", "unknown")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Plain PORT/APP_VERSION/GIT_SHA are accepted alongside the
	// replacer-derived SERVER_PORT/VERSION_APP_VERSION/VERSION_GIT_SHA names.
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("version.app_version", "APP_VERSION")
	_ = viper.BindEnv("version.git_sha", "GIT_SHA")

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func validateConfig(config *AppConfig) error {
	if config.Library.MountPath == "" {
		return fmt.Errorf("library mount path cannot be empty")
	}
	if config.Library.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if config.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	return nil
}
