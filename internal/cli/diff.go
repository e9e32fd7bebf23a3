package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/pql/pkg/kb"
)

var ErrKnowledgeBasesDiffer = errors.New("knowledge bases differ")

type DiffArgs struct {
	*RootArgs

	ExitCode bool
}

func NewDiffArgs(rootArgs *RootArgs) *DiffArgs {
	return &DiffArgs{
		RootArgs: rootArgs,
	}
}

func NewDiffCmd(da *DiffArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Show a unified diff between two knowledge base files",
		Long: `Show a unified diff between two knowledge base files in their saved form, so
that formatting differences that do not change any clause are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadKB(args[0])
			if err != nil {
				return err
			}

			b, err := loadKB(args[1])
			if err != nil {
				return err
			}

			d := kb.Diff(a, b, args[0], args[1])
			if d == "" {
				return nil
			}

			mustN(fmt.Fprint(cmd.OutOrStdout(), d))

			if da.ExitCode {
				return ErrKnowledgeBasesDiffer
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&da.ExitCode, "exit-code", false, "Exit with a non-zero status when the files differ")
	bindEnvVars(cmd)

	return cmd
}
