package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared by the config file, the environment (upper-cased) and the
// CLI flag bindings.
const (
	KeyPort                     = "port"
	KeyDataBackend              = "data_backend"
	KeyDataDir                  = "data_dir"
	KeySQLiteDBPath             = "sqlite_db_path"
	KeyRedisAddr                = "redis_addr"
	KeyRedisPassword            = "redis_password"
	KeyRedisDB                  = "redis_db"
	KeyRedisKeyPrefix           = "redis_key_prefix"
	KeyAMQPURL                  = "amqp_url"
	KeyAMQPExchange             = "amqp_exchange"
	KeyAMQPQueue                = "amqp_queue"
	KeyGoogleSpreadsheetID      = "google_spreadsheet_id"
	KeyGoogleSheetName          = "google_sheet_name"
	KeyGoogleServiceAccountFile = "google_service_account_file"
	KeyGoogleServiceAccountJSON = "google_service_account_json"
	KeyLogLevel                 = "log_level"
	KeyLogFormat                = "log_format"
	KeyWriteTimeout             = "write_timeout"
)

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"memory", "file", "sqlite", "redis"}

type Config struct {
	// HTTP Server
	Port string `mapstructure:"port"`

	// Record storage
	DataBackend  string `mapstructure:"data_backend"`
	DataDir      string `mapstructure:"data_dir"`
	SQLiteDBPath string `mapstructure:"sqlite_db_path"`

	// Redis
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`

	// AMQP change feed, disabled when AMQPURL is empty
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	AMQPQueue    string `mapstructure:"amqp_queue"`

	// Google Sheets export
	GoogleSpreadsheetID      string `mapstructure:"google_spreadsheet_id"`
	GoogleSheetName          string `mapstructure:"google_sheet_name"`
	GoogleServiceAccountFile string `mapstructure:"google_service_account_file"`
	GoogleServiceAccountJSON string `mapstructure:"google_service_account_json"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Persistence
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SetDefaults registers every key with its default value. Keys need a
// default so viper can resolve them from the environment on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyDataBackend, "file")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeySQLiteDBPath, "./data/ledger.db")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisKeyPrefix, "ledger:")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "ledger")
	v.SetDefault(KeyAMQPQueue, "state_changes")
	v.SetDefault(KeyGoogleSpreadsheetID, "")
	v.SetDefault(KeyGoogleSheetName, "Transactions")
	v.SetDefault(KeyGoogleServiceAccountFile, "")
	v.SetDefault(KeyGoogleServiceAccountJSON, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyWriteTimeout, 5*time.Second)
}

// Load reads configuration from the environment only.
func Load() (*Config, error) {
	return LoadWith(viper.New(), "")
}

// LoadWith resolves configuration through v: flags already bound to v win,
// then environment variables, then configFile (YAML, optional), then
// defaults.
func LoadWith(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// AMQPEnabled reports whether the change feed should be started.
func (c *Config) AMQPEnabled() bool {
	return strings.TrimSpace(c.AMQPURL) != ""
}

// SheetsEnabled reports whether a spreadsheet is configured for export.
func (c *Config) SheetsEnabled() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	if !slices.Contains(Backends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "file":
		if c.DataDir == "" {
			errs = append(errs, "data directory cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, "Redis address cannot be empty when using redis backend")
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Sprintf("invalid Redis database %d: must not be negative", c.RedisDB))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPEnabled() {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Google Sheets export is optional; check the credentials file only
	// when one is named.
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required when a spreadsheet is configured")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.WriteTimeout < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("invalid write timeout %v: must be at least 100ms", c.WriteTimeout))
	} else if c.WriteTimeout > 5*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid write timeout %v: must be at most 5 minutes", c.WriteTimeout))
	}

	// Return combined errors
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
