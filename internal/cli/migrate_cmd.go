package cli

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrateCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(newMigrateUpCmd(backend))
	cmd.AddCommand(newMigrateDownCmd(backend))
	cmd.AddCommand(newMigrateVersionCmd(backend))
	return cmd
}

func newMigrateUpCmd(backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(backend, func(m Migrator) error {
				if err := m.Up(); err != nil {
					if errors.Is(err, migrate.ErrNoChange) {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema already up to date")
						return nil
					}
					return fmt.Errorf("migrate up: %w", err)
				}
				return printVersion(cmd, m)
			})
		},
	}
}

func newMigrateDownCmd(backend Backend) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return withMigrator(backend, func(m Migrator) error {
				if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migrate down: %w", err)
				}
				return printVersion(cmd, m)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	return cmd
}

func newMigrateVersionCmd(backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(backend, func(m Migrator) error {
				return printVersion(cmd, m)
			})
		},
	}
}

func withMigrator(backend Backend, fn func(Migrator) error) error {
	m, err := backend.Migrator()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	state := ""
	if dirty {
		state = " (dirty)"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d%s\n", version, state)
	return nil
}
