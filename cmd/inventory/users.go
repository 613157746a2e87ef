package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bioskin/inventory/internal/auth"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage login accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user; prints a generated password unless --password is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		password, _ := cmd.Flags().GetString("password")

		generated := password == ""
		if generated {
			p, err := generatePassword(16)
			if err != nil {
				return fmt.Errorf("generating password: %w", err)
			}
			password = p
		}
		if !model.ValidRole(role) {
			return fmt.Errorf("invalid role %q", role)
		}
		if err := model.ValidatePassword(password); err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user, err := store.CreateUser(cmd.Context(), database, strings.TrimSpace(args[0]), hash, role)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q\n", user.Role, user.Username)
		if generated {
			fmt.Fprintf(cmd.OutOrStdout(), "  Password: %s\n", password)
		}
		return nil
	},
}

var usersImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create users from a JSON file, hashing plaintext passwords",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening users file: %w", err)
		}
		defer f.Close()

		records, err := readUserRecords(f)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		rep, err := importUsers(cmd.Context(), database, records)
		if err != nil {
			return err
		}
		for _, msg := range rep.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "  [skip] %s\n", msg)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d users (%d passwords hashed), skipped %d\n",
			rep.Created, rep.Hashed, len(rep.Skipped))
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		users, err := store.ListUsers(cmd.Context(), database)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
		}
		return nil
	},
}

func init() {
	usersAddCmd.Flags().String("role", model.RoleUser, "admin or user")
	usersAddCmd.Flags().String("password", "", "password (generated when empty)")
	usersImportCmd.Flags().StringP("file", "f", "users.json", "users JSON file")

	usersCmd.AddCommand(usersAddCmd, usersImportCmd, usersListCmd)
	rootCmd.AddCommand(usersCmd)
}

// userRecord is one entry of a users JSON file. Password holds either
// plaintext or an existing bcrypt hash.
type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userImport struct {
	Created int
	Hashed  int
	Skipped []string
}

func readUserRecords(r io.Reader) ([]userRecord, error) {
	var records []userRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding users file: %w", err)
	}
	return records, nil
}

// importUsers creates an account per record. Entries without a username or
// password, with an unknown role, or whose username is taken are skipped.
func importUsers(ctx context.Context, database *sql.DB, records []userRecord) (*userImport, error) {
	rep := &userImport{}
	for _, rec := range records {
		username := strings.TrimSpace(rec.Username)
		role := rec.Role
		if role == "" {
			role = model.RoleUser
		}

		switch {
		case username == "":
			rep.Skipped = append(rep.Skipped, "entry without username")
			continue
		case rec.Password == "":
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("%s: no password", username))
			continue
		case !model.ValidRole(role):
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("%s: invalid role %q", username, role))
			continue
		}

		hash := rec.Password
		if !auth.IsHashed(hash) {
			h, err := auth.HashPassword(rec.Password)
			if err != nil {
				return nil, fmt.Errorf("hashing password for %s: %w", username, err)
			}
			hash = h
			rep.Hashed++
		}

		_, err := store.CreateUser(ctx, database, username, hash, role)
		if errors.Is(err, store.ErrUserExists) {
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("%s: already exists", username))
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("user", username).Str("role", role).Msg("user imported")
		rep.Created++
	}
	return rep, nil
}
