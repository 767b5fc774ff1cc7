// Package importer implements `curriculum import`, a batch loader for course
// documents on disk.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"curriculum/internal/interfaces/bootstrap"
	"curriculum/internal/interfaces/cli/cmdutil"
)

var (
	flags   cmdutil.Flags
	org     string
	replace bool
	dryRun  bool
	workers int
	jsonOut bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import course documents from files",
		Long: `Import one or more JSON or YAML course documents into an organization.
Files are processed concurrently; files for the same course are serialized.
The command exits non-zero when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: run,
	}

	flags.Bind(cmd)
	cmd.Flags().StringVar(&org, "org", "", "Organization ID (required)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the lesson plans of existing courses")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent imports (default: import.batch_workers)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env, err := cmdutil.Setup(&flags)
	if err != nil {
		return err
	}
	defer env.Close()

	core, err := bootstrap.New(env.DB, env.Config, env.Log)
	if err != nil {
		return fmt.Errorf("failed to wire engine: %w", err)
	}
	defer core.Close()

	opts := BatchOptions{
		OrganizationID: org,
		Replace:        replace,
		DryRun:         dryRun,
		Workers:        workers,
		MaxBytes:       env.Config.Server.MaxDocumentBytes,
	}
	if opts.Workers <= 0 {
		opts.Workers = env.Config.Import.BatchWorkers
	}

	batch := NewBatch(core.UseCases.Import, core.UseCases.Preview, env.Log.Named("batch"))
	results := batch.Run(cmd.Context(), args, opts)

	if jsonOut {
		err = writeJSON(cmd.OutOrStdout(), results)
	} else {
		err = writeSummary(cmd.OutOrStdout(), results)
	}
	if err != nil {
		return err
	}

	if failed := countFailed(results); failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d imports failed", failed, len(results))
	}
	return nil
}

func countFailed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

func writeJSON(out io.Writer, results []FileResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeSummary(out io.Writer, results []FileResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tOUTCOME\tMODE\tCOURSE\tLESSONS\tNEW TECHNIQUES\tERROR")
	for _, r := range results {
		mode, courseID, lessons, created := "-", "-", 0, 0
		if r.Result != nil {
			if r.Result.Mode != "" {
				mode = string(r.Result.Mode)
			}
			if r.Result.CourseID != "" {
				courseID = r.Result.CourseID
			}
			lessons = r.Result.LessonPlansCreated
			created = r.Result.TechniquesCreated
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Path, r.Outcome, mode, courseID, lessons, created, r.Error)
	}
	return w.Flush()
}
