package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/config"
	"github.com/macropower/pql/pkg/render"
)

type ConfigArgs struct {
	*RootArgs

	Write  bool
	Force  bool
	Schema bool
}

func NewConfigArgs(rootArgs *RootArgs) *ConfigArgs {
	return &ConfigArgs{
		RootArgs: rootArgs,
	}
}

func NewConfigCmd(ca *ConfigArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or write the configuration",
		Long: `Print the active configuration. With --write, write the default configuration
file and its JSON schema instead; an existing file is kept unless --force is
set or confirmed at the prompt, in which case it is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ca.configPath()

			switch {
			case ca.Write:
				force := ca.Force
				if !force && fileExists(path) {
					theme := render.DefaultTheme()
					if cfg, err := ca.loadConfig(); err == nil {
						theme = cfg.Theme
					}

					replace, err := confirmReplace(cmd.Context(), path, theme)
					if err != nil {
						return err
					}

					force = replace
				}

				err := config.WriteDefault(path, force)
				if err != nil {
					return fmt.Errorf("write config: %w", err)
				}

				mustN(fmt.Fprintln(cmd.OutOrStdout(), path))

				return nil

			case ca.Schema:
				b, err := config.Schema()
				if err != nil {
					return fmt.Errorf("generate schema: %w", err)
				}

				mustN(fmt.Fprintln(cmd.OutOrStdout(), string(b)))

				return nil
			}

			cfg, err := ca.loadConfig()
			if err != nil {
				return err
			}

			slog.Info("active configuration", slog.String("path", path))

			b, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("marshal config yaml: %w", err)
			}

			mustN(fmt.Fprint(cmd.OutOrStdout(), string(b)))

			return nil
		},
	}

	cmd.Flags().BoolVar(&ca.Write, "write", false, "Write the default configuration file and JSON schema")
	cmd.Flags().BoolVar(&ca.Force, "force", false, "With --write, replace an existing file after backing it up")
	cmd.Flags().BoolVar(&ca.Schema, "schema", false, "Print the configuration JSON schema")
	cmd.MarkFlagsMutuallyExclusive("write", "schema")
	bindEnvVars(cmd)

	return cmd
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
