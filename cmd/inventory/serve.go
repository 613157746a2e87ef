package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bioskin/inventory/internal/api"
	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bridge API for the desktop UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		password, err := ensureAdmin(ctx, database, cfg.AdminUser)
		if err != nil {
			return err
		}
		if password != "" {
			printInitResult(cfg.DBPath, cfg.AdminUser, password)
		}

		jwtSecret, err := store.GetJWTSecret(ctx, database)
		if err != nil {
			return err
		}

		handler := api.LoggingMiddleware(api.NewRouter(database, api.Options{
			JWTSecret:         jwtSecret,
			LowStockThreshold: cfg.LowStockThreshold,
		}))

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		go func() {
			<-ctx.Done()
			log.Info().Msg("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
			}
		}()

		log.Info().Str("addr", cfg.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		log.Info().Msg("server stopped, closing database")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().String("admin-user", "admin", "admin username created on first run")
	serveCmd.Flags().Int("low-stock-threshold", model.DefaultLowStockThreshold, "default low stock threshold")
	rootCmd.AddCommand(serveCmd)
}

// ensureAdmin creates an admin account with a random password when the
// database has no users. It returns the password, or "" when users exist.
func ensureAdmin(ctx context.Context, database *sql.DB, username string) (string, error) {
	users, err := store.ListUsers(ctx, database)
	if err != nil {
		return "", err
	}
	if len(users) > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	log.Info().Str("user", username).Msg("admin account created")
	return password, nil
}

// printInitResult prints the first-run admin credentials to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

