package console

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cybercog/ban/config"
	"github.com/cybercog/ban/database/migration"
	"github.com/cybercog/ban/di"
)

type migrateFlags struct {
	path  string
	table string
}

func (f *migrateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "path", "", "Migrations directory (default: the published migrations directory)")
	cmd.Flags().StringVar(&f.table, "table", "", "Table tracking the applied migrations")
}

// set resolves the flags into a migration set on the application filesystem.
func (k *Kernel) set(f *migrateFlags) migration.Set {
	dir := k.path(f.path, k.app.MigrationsPath())
	table := f.table
	if table == "" {
		table = k.app.Config().GetString(config.KeyMigrationsTable)
	}
	if table == "" {
		table = migration.DefaultTable
	}
	return migration.FromDir(k.app.Fs(), dir, k.display(dir), table)
}

func (k *Kernel) runner() (*migration.Runner, error) {
	db, err := di.Resolve[*gorm.DB](k.app.Container, di.Keys.Database)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return migration.NewRunner(db, k.app.Logger)
}

// MigrateCommand applies pending migrations from a directory.
//
//	migrate [--path database/migrations] [--table schema_migrations]
func MigrateCommand(k *Kernel) *cobra.Command {
	var flags migrateFlags
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := k.runner()
			if err != nil {
				return err
			}
			applied, err := runner.Up(cmd.Context(), k.set(&flags))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Nothing to migrate.")
				return nil
			}
			for _, f := range applied {
				fmt.Fprintf(out, "Migrated: %s\n", f.Name())
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// MigrateStatusCommand lists the migrations of a directory and whether they ran.
func MigrateStatusCommand(k *Kernel) *cobra.Command {
	var flags migrateFlags
	cmd := &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := k.runner()
			if err != nil {
				return err
			}
			statuses, err := runner.Status(k.set(&flags))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				fmt.Fprintln(out, "No migrations found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Ran?\tMigration")
			for _, s := range statuses {
				ran := "No"
				switch {
				case s.Dirty:
					ran = "Dirty"
				case s.Applied:
					ran = "Yes"
				}
				fmt.Fprintf(w, "%s\t%s\n", ran, s.Name())
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	return cmd
}

// MigrateResetCommand rolls back every migration of a directory.
func MigrateResetCommand(k *Kernel) *cobra.Command {
	var flags migrateFlags
	cmd := &cobra.Command{
		Use:   "migrate:reset",
		Short: "Rollback all database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := k.runner()
			if err != nil {
				return err
			}
			set := k.set(&flags)
			if err := runner.Down(cmd.Context(), set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %s.\n", set.Name)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}
