// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/project-hub/migrations"
)

var errPendingMigrations = errors.New("migrations are pending")

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|check] [version]",
	Short: "Run database migrations",
	Long: `Apply, roll back or inspect the embedded schema migrations.

"down" without a version rolls back one step, "down 0" empties the schema.
"check" exits non zero while migrations are pending.`,
	Args: migrateArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().String("dsn", os.Getenv("DSN"), "PostgreSQL DSN connection string (env DSN)")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "down", "status", "check":
	default:
		return fmt.Errorf("invalid command %q", args[0])
	}

	if len(args) == 2 {
		if args[0] != "down" {
			return fmt.Errorf("only down accepts a target version, got %q", args)
		}

		if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
			return fmt.Errorf("invalid version number %q", args[1])
		}
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dsn, _ := cmd.Flags().GetString("dsn")
	format, _ := cmd.Flags().GetString("format")

	if dsn == "" {
		return errors.New("a DSN is required, use --dsn or the DSN variable")
	}

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	target := int64(-1)
	if len(args) > 1 {
		target, _ = strconv.ParseInt(args[1], 10, 64)
	}

	cmd.SilenceUsage = true

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("invalid DSN: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	if err := db.PingContext(cmd.Context()); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	provider, err := newMigrationProvider(db, format == "json")
	if err != nil {
		return err
	}

	r := &migrationRunner{provider: provider, json: format == "json", out: cmd.OutOrStdout()}

	switch command {
	case "down":
		return r.down(cmd.Context(), target)
	case "status":
		return r.status(cmd.Context())
	case "check":
		return r.check(cmd.Context())
	default:
		return r.up(cmd.Context())
	}
}

// newMigrationProvider binds the embedded migrations to db.
func newMigrationProvider(db *sql.DB, quiet bool) (*goose.Provider, error) {
	var opts []goose.ProviderOption
	if quiet {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}

	return provider, nil
}

type migrationRunner struct {
	provider *goose.Provider
	json     bool
	out      io.Writer
}

func (r *migrationRunner) up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return err
	}

	return r.report(results)
}

// down rolls back a single migration when target is negative.
func (r *migrationRunner) down(ctx context.Context, target int64) error {
	if target >= 0 {
		results, err := r.provider.DownTo(ctx, target)
		if err != nil {
			return err
		}

		return r.report(results)
	}

	result, err := r.provider.Down(ctx)
	if err != nil {
		return err
	}

	return r.report([]*goose.MigrationResult{result})
}

func (r *migrationRunner) report(results []*goose.MigrationResult) error {
	if results == nil {
		results = []*goose.MigrationResult{}
	}

	if r.json {
		return json.NewEncoder(r.out).Encode(map[string]interface{}{"applied": results})
	}

	if len(results) == 0 {
		fmt.Fprintln(r.out, "No migrations to apply")
		return nil
	}

	for _, res := range results {
		fmt.Fprintf(r.out, "%-4s %-40s %s\n", res.Direction, res.Source.Path, res.Duration.Round(time.Millisecond))
	}

	return nil
}

func (r *migrationRunner) status(ctx context.Context) error {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return err
	}

	if r.json {
		return json.NewEncoder(r.out).Encode(statuses)
	}

	fmt.Fprintf(r.out, "%-26s %s\n", "APPLIED AT", "MIGRATION")
	for _, s := range statuses {
		appliedAt := "pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}

		fmt.Fprintf(r.out, "%-26s %s\n", appliedAt, s.Source.Path)
	}

	return nil
}

func (r *migrationRunner) check(ctx context.Context) error {
	pending, err := r.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	state := "ok"
	if pending {
		state = "pending"
	}

	if r.json {
		if err := json.NewEncoder(r.out).Encode(map[string]interface{}{"status": state, "version": current}); err != nil {
			return err
		}
	} else if !pending {
		fmt.Fprintf(r.out, "Database is up to date (version %d)\n", current)
	}

	if pending {
		return fmt.Errorf("%w: current version %d", errPendingMigrations, current)
	}

	return nil
}
