package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/version"
	"github.com/macropower/pql/pkg/yaml"
)

type VersionArgs struct {
	*RootArgs

	Output string
}

func NewVersionArgs(rootArgs *RootArgs) *VersionArgs {
	return &VersionArgs{
		RootArgs: rootArgs,
	}
}

func NewVersionCmd(va *VersionArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := render.ParseFormat(va.Output)
			if err != nil {
				return err //nolint:wrapcheck // Already descriptive.
			}

			info := version.Get()
			w := cmd.OutOrStdout()

			switch format {
			case render.FormatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")

				if err := enc.Encode(info); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}

			case render.FormatYAML:
				b, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}

				mustN(w.Write(b))

			case render.FormatText:
				mustN(fmt.Fprintln(w, info))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&va.Output, "output", "o", string(render.FormatText),
		fmt.Sprintf("Output format, one of: %s", render.AllFormats))
	bindEnvVars(cmd)

	return cmd
}
