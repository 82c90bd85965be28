package cmd

import (
	"github.com/spf13/cobra"

	"simpleedit.dev/pkg/simpleedit/internal/domain"
)

var dryRunFlag bool

// replaceCmd represents the replace command.
var replaceCmd = newReplaceCmd()

func newReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <old> <new> [paths...]",
		Short: "Replace text in files",
		Long:  replaceLongDescription,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Replace(cmd.Context(), domain.ReplaceArgs{
				BatchArgs: batchArgs(args[2:]),
				Old:       args[0],
				New:       args[1],
				DryRun:    dryRunFlag,
			})
		},
	}

	configureReplaceFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(replaceCmd)
}

func configureReplaceFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRunFlag, dryRunFlagName, false, "show the diff without writing files")
}
