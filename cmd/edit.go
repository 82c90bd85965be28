package cmd

import (
	"github.com/spf13/cobra"

	"simpleedit.dev/pkg/simpleedit/internal/domain"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

// editCmd represents the edit command.
var editCmd = newEditCmd()

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the interactive editor",
		Long: `Open the interactive editor, optionally on an existing file.

A file that does not exist yet is remembered as the destination of the first
save. Press ctrl+q to exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path m.Path
			if len(args) == 1 {
				path = m.Path(args[0])
			}

			return workflow.Edit(cmd.Context(), domain.EditArgs{Path: path})
		},
	}
}

func init() {
	rootCmd.AddCommand(editCmd)
}
