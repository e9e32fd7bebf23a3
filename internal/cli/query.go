package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/watch"
)

type QueryArgs struct {
	*RootArgs

	File        string
	Query       string
	Filter      string
	Output      string
	Trace       bool
	Watch       bool
	FailOnFalse bool
}

func NewQueryArgs(rootArgs *RootArgs) *QueryArgs {
	return &QueryArgs{
		RootArgs: rootArgs,
	}
}

func (qa *QueryArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&qa.Trace, "trace", "t", false, "Print the evaluation trace (default from config)")
	cmd.Flags().StringVarP(&qa.Filter, "filter", "f", "", "CEL expression selecting the trace events to print")
	cmd.Flags().StringVarP(&qa.Output, "output", "o", string(render.FormatText),
		fmt.Sprintf("Output format, one of: %s", render.AllFormats))
	cmd.Flags().BoolVarP(&qa.Watch, "watch", "w", false, "Re-run the query whenever the file changes")
	cmd.Flags().BoolVar(&qa.FailOnFalse, "fail-on-false", false, "Exit with a non-zero status when the query is false")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(render.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewQueryCmd(qa *QueryArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <file> <query>",
		Short: "Evaluate a query against a knowledge base file",
		Example: `  pql query family.pl "parent(tom, bob)"
  pql query family.pl "?- ancestor(tom, ann)." --trace
  pql query family.pl "ancestor(tom, ann)" --output json
  pql query family.pl "ancestor(tom, ann)" --watch`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}

			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			qa.File = args[0]
			qa.Query = args[1]

			return runQuery(cmd, qa)
		},
	}

	qa.AddFlags(cmd)
	bindEnvVars(cmd)

	return cmd
}

func runQuery(cmd *cobra.Command, qa *QueryArgs) error {
	format, err := render.ParseFormat(qa.Output)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	cfg, err := qa.loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("filter") {
		cfg.Trace.Filter = qa.Filter
	}

	filter, err := traceSettings(cfg)
	if err != nil {
		return err
	}

	showTrace := cfg.TraceEnabled()
	if cmd.Flags().Changed("trace") {
		showTrace = qa.Trace
	}

	opts := []render.PrinterOpt{
		render.WithFormat(format),
		render.WithStyles(newStyles(cfg)),
	}
	if showTrace {
		opts = append(opts, render.WithTrace(filter, cfg.TraceIndent()))
	}

	printer := render.NewPrinter(cmd.OutOrStdout(), opts...)

	ctx := cmd.Context()
	sess := session.New()

	if qa.Watch {
		w := watch.New(sess, qa.File, qa.Query,
			func(res session.Result) {
				if err := printer.Print(res); err != nil {
					slog.Error("print result", slog.Any("err", err))
				}
			},
			watch.WithErrorHandler(func(err error) {
				slog.Error("reload knowledge base", slog.Any("err", err))
			}),
		)

		err := w.Run(ctx)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}

		return nil
	}

	err = sess.Load(qa.File)
	if err != nil {
		return err //nolint:wrapcheck // Already carries the path.
	}

	res := sess.Query(ctx, qa.Query)

	err = printer.Print(res)
	if err != nil {
		return fmt.Errorf("print result: %w", err)
	}

	if qa.FailOnFalse && !res.Value {
		return ErrQueryFalse
	}

	return nil
}
