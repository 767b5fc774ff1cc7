package migrate

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"curriculum/internal/infrastructure/migration"
	"curriculum/internal/interfaces/cli/cmdutil"
)

var (
	flags cmdutil.Flags
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the curriculum schema migrations.`,
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	env, err := cmdutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer env.Close()

	env.Log.Infow("running up migrations", "environment", env.Name)

	if err := migration.NewGooseStrategy(env.Log).Migrate(cmd.Context(), env.DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	env, err := cmdutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer env.Close()

	env.Log.Infow("running down migrations", "environment", env.Name, "steps", steps)

	if err := migration.NewGooseStrategy(env.Log).MigrateDown(cmd.Context(), env.DB, steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := cmdutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer env.Close()

	statuses, err := migration.NewGooseStrategy(env.Log).Status(cmd.Context(), env.DB)
	if err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), statuses)
}

func writeStatus(out io.Writer, statuses []*goose.MigrationStatus) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		var version int64
		var path string
		if s.Source != nil {
			version = s.Source.Version
			path = s.Source.Path
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", version, s.State, applied, path)
	}
	return w.Flush()
}
