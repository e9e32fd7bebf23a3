package cli

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/mcp"
	"github.com/macropower/pql/pkg/session"
)

type ServeMCPArgs struct {
	*RootArgs

	File    string
	Address string
}

func NewServeMCPArgs(rootArgs *RootArgs) *ServeMCPArgs {
	return &ServeMCPArgs{
		RootArgs: rootArgs,
	}
}

func NewServeMCPCmd(sa *ServeMCPArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp [file]",
		Short: "Serve the knowledge base to MCP clients",
		Long: `Serve the knowledge base to MCP clients over stdio, or over streamable HTTP
when --addr is set. In HTTP mode, Prometheus metrics are served at /metrics.`,
		Example: `  # Serve over stdio:
  pql serve-mcp family.pl

  # Serve over HTTP:
  pql serve-mcp family.pl --addr localhost:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				sa.File = args[0]
			}

			return runServeMCP(cmd, sa)
		},
	}

	cmd.Flags().StringVar(&sa.Address, "addr", "", "Serve streamable HTTP at this address instead of stdio")
	bindEnvVars(cmd)

	return cmd
}

func runServeMCP(cmd *cobra.Command, sa *ServeMCPArgs) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sess := session.New(session.WithRegisterer(reg))

	if sa.File != "" {
		err := sess.Load(sa.File)
		if err != nil {
			return err //nolint:wrapcheck // Already carries the path.
		}
	}

	opts := []mcp.Option{
		mcp.WithAddress(sa.Address),
		mcp.WithGatherer(reg),
	}
	if slog.Default().Enabled(cmd.Context(), slog.LevelDebug) {
		opts = append(opts, mcp.WithRPCLog(cmd.ErrOrStderr()))
	}

	return mcp.NewServer(sess, opts...).Serve(cmd.Context()) //nolint:wrapcheck // Already descriptive.
}
