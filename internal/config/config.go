// Package config loads runtime settings from defaults, an optional env
// file, INVENTORY_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/bioskin/inventory/internal/model"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INVENTORY"

// Setting keys. The environment variable for a key is EnvPrefix + "_" + the
// upper-cased key; env files use the upper-cased key without the prefix.
const (
	KeyDBPath            = "db_path"
	KeyAddr              = "addr"
	KeyEnv               = "env"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
	KeyAdminUser         = "admin_user"
	KeyLowStockThreshold = "low_stock_threshold"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// fileNames are the env files merged by ReadFiles, lowest precedence first.
var fileNames = []string{".env", "inventory.env"}

// Config holds the resolved settings.
type Config struct {
	DBPath            string
	Addr              string
	Env               string
	LogLevel          string
	LogFile           string
	AdminUser         string
	LowStockThreshold int
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers bind flags to it before calling Decode.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDBPath, "inventory.db")
	v.SetDefault(KeyAddr, "127.0.0.1:8080")
	v.SetDefault(KeyEnv, EnvDevelopment)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyAdminUser, "admin")
	v.SetDefault(KeyLowStockThreshold, model.DefaultLowStockThreshold)
	return v
}

// ReadFiles merges the env files found in dirs into v. Missing files are
// skipped.
func ReadFiles(v *viper.Viper, dirs ...string) error {
	v.SetConfigType("env")
	for _, dir := range dirs {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
		}
	}
	return nil
}

// Decode resolves and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBPath:            strings.TrimSpace(v.GetString(KeyDBPath)),
		Addr:              strings.TrimSpace(v.GetString(KeyAddr)),
		Env:               strings.ToLower(strings.TrimSpace(v.GetString(KeyEnv))),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFile:           strings.TrimSpace(v.GetString(KeyLogFile)),
		AdminUser:         strings.TrimSpace(v.GetString(KeyAdminUser)),
		LowStockThreshold: v.GetInt(KeyLowStockThreshold),
	}

	var errs []error
	if cfg.DBPath == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	if cfg.Addr == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("unknown environment %q (want %s or %s)", cfg.Env, EnvDevelopment, EnvProduction))
	}
	if cfg.AdminUser == "" {
		errs = append(errs, errors.New("admin username must not be empty"))
	}
	if cfg.LowStockThreshold <= 0 {
		errs = append(errs, fmt.Errorf("low stock threshold must be positive, got %d", cfg.LowStockThreshold))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load builds a viper instance, merges the env files found in dirs, lets
// bind attach higher-precedence sources such as command-line flags, and
// decodes the result. bind may be nil.
func Load(bind func(*viper.Viper) error, dirs ...string) (*Config, error) {
	v := New()
	if err := ReadFiles(v, dirs...); err != nil {
		return nil, err
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return nil, err
		}
	}
	return Decode(v)
}
