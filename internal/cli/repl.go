package cli

import (
	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/repl"
	"github.com/macropower/pql/pkg/session"
)

type REPLArgs struct {
	*RootArgs

	File        string
	HistoryFile string
	NoTrace     bool
}

func NewREPLArgs(rootArgs *RootArgs) *REPLArgs {
	return &REPLArgs{
		RootArgs: rootArgs,
	}
}

func (ra *REPLArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.HistoryFile, "history-file", "", "File storing input history (default from config)")
	cmd.Flags().BoolVar(&ra.NoTrace, "no-trace", false, "Do not print the trace after queries")
}

func NewREPLCmd(ra *REPLArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "Start the interactive console",
		Long: `Start the interactive console. Clauses typed at the prompt are added to the
knowledge base, lines starting with "?-" are queried, and the commands load,
save, show, clear, help and exit manage the session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ra.File = args[0]
			}

			return runREPL(cmd, ra)
		},
	}

	ra.AddFlags(cmd)
	bindEnvVars(cmd)

	return cmd
}

func runREPL(cmd *cobra.Command, ra *REPLArgs) error {
	cfg, err := ra.loadConfig()
	if err != nil {
		return err
	}

	filter, err := traceSettings(cfg)
	if err != nil {
		return err
	}

	sess := session.New()

	if ra.File != "" {
		err = sess.Load(ra.File)
		if err != nil {
			return err //nolint:wrapcheck // Already carries the path.
		}
	}

	historyFile := cfg.REPL.HistoryFile
	if ra.HistoryFile != "" {
		historyFile = ra.HistoryFile
	}

	rl, err := repl.NewReadline(repl.ReadlineConfig{
		Prompt:      cfg.REPL.Prompt,
		HistoryFile: historyFile,
	})
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	opts := []repl.Option{repl.WithStyles(newStyles(cfg))}
	if cfg.TraceEnabled() && !ra.NoTrace {
		opts = append(opts, repl.WithTrace(filter, cfg.TraceIndent()))
	}

	return repl.New(sess, rl, cmd.OutOrStdout(), opts...).Run(cmd.Context()) //nolint:wrapcheck // Already descriptive.
}
