// Package audit implements `curriculum audit`, the consistency report for one
// course, a whole organization, or the parentless row scan of the store.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"curriculum/internal/application/contentimport/usecases"
	"curriculum/internal/interfaces/bootstrap"
	"curriculum/internal/interfaces/cli/cmdutil"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/services/markdown"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

var (
	flags  cmdutil.Flags
	org    string
	store  bool
	format string
)

// report is satisfied by every audit report shape.
type report interface {
	Markdown() string
	IsConsistent() bool
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [COURSE_ID]",
		Short: "Check stored courses for consistency",
		Long: `Audit one course, or every course of the organization when no course ID
is given. --store instead scans the whole store for lesson plans and links
whose parent row is gone; those rows belong to no organization.
The command exits non-zero when the report finds issues.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	flags.Bind(cmd)
	cmd.Flags().StringVar(&org, "org", "", "Organization ID")
	cmd.Flags().BoolVar(&store, "store", false, "Scan the whole store for parentless rows")
	cmd.Flags().StringVarP(&format, "format", "f", formatMarkdown, "Output format: json, markdown or html")
	cmd.MarkFlagsOneRequired("org", "store")
	cmd.MarkFlagsMutuallyExclusive("org", "store")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if store && len(args) > 0 {
		return errors.NewValidationError("--store takes no course id")
	}

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

	courseID := ""
	if len(args) == 1 {
		courseID = args[0]
	}

	var r report
	if store {
		r, err = fetchStore(cmd.Context(), core.UseCases.Audit)
	} else {
		r, err = fetch(cmd.Context(), core.UseCases.Audit, org, courseID)
	}
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), r, format, core.UseCases.Markdown); err != nil {
		return err
	}

	if !r.IsConsistent() {
		cmd.SilenceUsage = true
		return fmt.Errorf("audit found issues")
	}
	return nil
}

func checkFormat(f string) error {
	switch f {
	case formatJSON, formatMarkdown, formatHTML:
		return nil
	}
	return errors.NewValidationError("unsupported audit format", f)
}

func fetch(ctx context.Context, uc usecases.AuditCourseExecutor, organizationID, courseID string) (report, error) {
	if courseID == "" {
		r, err := uc.ExecuteOrganization(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := uc.Execute(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if r.OrganizationID != organizationID {
		return nil, errors.NewNotFoundError("course not found", courseID)
	}
	return r, nil
}

func fetchStore(ctx context.Context, uc usecases.AuditCourseExecutor) (report, error) {
	r, err := uc.ExecuteStore(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func render(out io.Writer, r report, f string, md markdown.MarkdownService) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatHTML:
		html, err := md.ReportHTML(r.Markdown())
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		_, err = io.WriteString(out, html)
		return err
	default:
		_, err := io.WriteString(out, r.Markdown())
		return err
	}
}
