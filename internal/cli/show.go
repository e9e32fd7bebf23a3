package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/render"
)

func NewShowCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a knowledge base file with syntax highlighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ra.loadConfig()
			if err != nil {
				return err
			}

			k, err := loadKB(args[0])
			if err != nil {
				return err
			}

			listing, err := render.NewHighlighter(newStyles(cfg)).Listing(k)
			if err != nil {
				return fmt.Errorf("render listing: %w", err)
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), listing))

			return nil
		},
	}

	bindEnvVars(cmd)

	return cmd
}
