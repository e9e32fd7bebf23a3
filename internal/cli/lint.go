package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/lint"
	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/yaml"
)

var ErrLintIssues = errors.New("lint issues found")

type LintArgs struct {
	*RootArgs

	Output string
	Strict bool
}

func NewLintArgs(rootArgs *RootArgs) *LintArgs {
	return &LintArgs{
		RootArgs: rootArgs,
	}
}

func (la *LintArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&la.Output, "output", "o", string(render.FormatText),
		fmt.Sprintf("Output format, one of: %s", render.AllFormats))
	cmd.Flags().BoolVar(&la.Strict, "strict", false, "Exit with a non-zero status when issues are found")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(render.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

type lintReport struct {
	File   string       `json:"file"`
	Issues []lint.Issue `json:"issues"`
}

func NewLintCmd(la *LintArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Report clauses that are probably not what their author meant",
		Long: `Report clauses that are probably not what their author meant. Clauses are
always accepted as written; lint issues are advisory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(la.Output)
			if err != nil {
				return err //nolint:wrapcheck // Already descriptive.
			}

			reports := make([]lintReport, 0, len(args))
			total := 0

			for _, path := range args {
				k, err := loadKB(path)
				if err != nil {
					return err
				}

				issues := lint.Check(k)
				if issues == nil {
					issues = []lint.Issue{}
				}

				total += len(issues)
				reports = append(reports, lintReport{File: path, Issues: issues})
			}

			err = writeLintReports(cmd.OutOrStdout(), format, reports)
			if err != nil {
				return err
			}

			if la.Strict && total > 0 {
				return fmt.Errorf("%w: %d", ErrLintIssues, total)
			}

			return nil
		},
	}

	la.AddFlags(cmd)
	bindEnvVars(cmd)

	return cmd
}

func writeLintReports(w io.Writer, format render.Format, reports []lintReport) error {
	switch format {
	case render.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil

	case render.FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close() //nolint:wrapcheck // Return the original error.

	case render.FormatText:
	}

	for _, r := range reports {
		for _, issue := range r.Issues {
			mustN(fmt.Fprintf(w, "%s: %s\n", r.File, issue))
		}
	}

	return nil
}
