package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/config"
	"github.com/macropower/pql/pkg/kb"
	"github.com/macropower/pql/pkg/log"
	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/trace"
)

const (
	cmdName = "pql"
	cmdDesc = `Evaluate queries against a plain-text knowledge base of facts and rules.`

	cmdExamples = `  # Evaluate a query against a knowledge base file:
  pql query family.pl "ancestor(tom, ann)"

  # Show only failures and backtracking in the trace:
  pql query family.pl "ancestor(tom, ann)" --trace --filter 'isFailure(kind)'

  # Start the interactive console:
  pql repl family.pl

  # Edit clauses and run queries in the terminal UI:
  pql ui family.pl`
)

// ErrQueryFalse is returned by "query --fail-on-false" when the query is
// false. It is not printed.
var ErrQueryFalse = errors.New("query is false")

type RootArgs struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the pql configuration file")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

// configPath returns the --config value, or the default path.
func (ra *RootArgs) configPath() string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return config.GetPath()
}

// loadConfig loads the active configuration. A missing file yields the
// defaults.
func (ra *RootArgs) loadConfig() (*config.Config, error) {
	path := ra.configPath()

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	slog.Debug("loaded configuration", slog.String("path", path))

	return cfg, nil
}

// traceSettings compiles the trace filter of cfg.
func traceSettings(cfg *config.Config) (*trace.Filter, error) {
	f, err := trace.NewFilter(cfg.Trace.Filter)
	if err != nil {
		return nil, fmt.Errorf("trace filter: %w", err)
	}

	return f, nil
}

func newStyles(cfg *config.Config) *render.Styles {
	return render.NewStyles(cfg.Theme)
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewQueryCmd(NewQueryArgs(args)),
		NewREPLCmd(NewREPLArgs(args)),
		NewUICmd(NewUIArgs(args)),
		NewShowCmd(args),
		NewLintCmd(NewLintArgs(args)),
		NewDiffCmd(NewDiffArgs(args)),
		NewServeMCPCmd(NewServeMCPArgs(args)),
		NewConfigCmd(NewConfigArgs(args)),
		NewVersionCmd(NewVersionArgs(args)),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		_, err := log.Setup(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		return nil
	}
}

func loadKB(path string) (*kb.KnowledgeBase, error) {
	k, err := kb.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	return k, nil
}
