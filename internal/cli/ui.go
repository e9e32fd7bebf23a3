package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/pql/pkg/log"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/ui"
)

var ErrNotTerminal = errors.New("standard output is not a terminal")

type UIArgs struct {
	*RootArgs

	File string
}

func NewUIArgs(rootArgs *RootArgs) *UIArgs {
	return &UIArgs{
		RootArgs: rootArgs,
	}
}

func NewUICmd(ua *UIArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui [file]",
		Short: "Edit clauses and run queries in the terminal UI",
		Long: `Edit clauses and run queries in the terminal UI. Running a query replaces
the knowledge base with the editor contents first. Log output is held while
the UI is open and printed when it exits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ua.File = args[0]
			}

			return runUI(cmd, ua)
		},
	}

	bindEnvVars(cmd)

	return cmd
}

func runUI(cmd *cobra.Command, ua *UIArgs) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	cfg, err := ua.loadConfig()
	if err != nil {
		return err
	}

	filter, err := traceSettings(cfg)
	if err != nil {
		return err
	}

	logBuf := log.NewBuffer(log.DefaultBufferLines)

	_, err = log.Setup(logBuf, ua.LogLevel, ua.LogFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}

	defer flushLogs(cmd.ErrOrStderr(), logBuf, ua.RootArgs)

	opts := []ui.Option{
		ui.WithStyles(newStyles(cfg)),
		ui.WithTrace(filter, cfg.TraceIndent()),
	}
	if ua.File != "" {
		opts = append(opts, ui.WithFile(ua.File))
	}

	p := ui.NewProgram(cmd.Context(), cfg.UI, session.New(), opts...)

	_, err = p.Run()
	if err != nil {
		slog.Error("run UI", slog.Any("err", err))

		return fmt.Errorf("ui program failure: %w", err)
	}

	return nil
}

// flushLogs restores logging to w and writes the captured lines to it.
func flushLogs(w io.Writer, buf *log.Buffer, ra *RootArgs) {
	_, err := log.Setup(w, ra.LogLevel, ra.LogFormat)
	if err != nil {
		panic(err)
	}

	slog.Debug("flush logs to console",
		slog.Int("count", buf.Len()),
		slog.Int("dropped", buf.Dropped()),
	)

	_, err = buf.WriteTo(w)
	if err != nil {
		panic(err)
	}
}
