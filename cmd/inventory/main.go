// Command inventory runs the inventory bridge API and offers headless
// access to imports, bulk updates and user management.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bioskin/inventory/internal/config"
	"github.com/bioskin/inventory/internal/db"
	"github.com/bioskin/inventory/internal/logger"
)

var (
	cfg      *config.Config
	closeLog func()
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"db":                  config.KeyDBPath,
	"env":                 config.KeyEnv,
	"log-level":           config.KeyLogLevel,
	"log-file":            config.KeyLogFile,
	"addr":                config.KeyAddr,
	"admin-user":          config.KeyAdminUser,
	"low-stock-threshold": config.KeyLowStockThreshold,
}

var rootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "Local inventory backend: bridge API, imports and user management",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(func(v *viper.Viper) error {
			for name, key := range flagKeys {
				if f := cmd.Flags().Lookup(name); f != nil {
					if err := v.BindPFlag(key, f); err != nil {
						return fmt.Errorf("binding flag %s: %w", name, err)
					}
				}
			}
			return nil
		}, ".")
		if err != nil {
			return err
		}
		cfg = c

		cleanup, err := logger.Setup(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
		if err != nil {
			return err
		}
		closeLog = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "inventory.db", "SQLite database path")
	pf.String("env", config.EnvDevelopment, "environment: development or production")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-file", "", "also write logs to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase opens the configured database and brings its schema up to
// date. Columns that could not be added are reported but do not stop the
// command.
func openDatabase() (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	missing, err := db.MissingColumns(database)
	if err != nil {
		database.Close()
		return nil, err
	}
	if len(missing) > 0 {
		log.Warn().Strs("columns", missing).Msg("items table is missing columns; those fields will not be stored")
	}

	log.Info().Str("path", cfg.DBPath).Msg("database ready")
	return database, nil
}
