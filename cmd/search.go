package cmd

import (
	"github.com/spf13/cobra"

	"simpleedit.dev/pkg/simpleedit/internal/domain"
)

// searchCmd represents the search command.
var searchCmd = newSearchCmd()

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <needle> [paths...]",
		Short: "Find text in files",
		Long:  searchLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Search(cmd.Context(), domain.SearchArgs{
				BatchArgs: batchArgs(args[1:]),
				Needle:    args[0],
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
