package cmd

import (
	"github.com/spf13/cobra"

	"simpleedit.dev/pkg/simpleedit/internal/domain"
)

// statsCmd represents the stats command.
var statsCmd = newStatsCmd()

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [paths...]",
		Short: "Show text statistics for files",
		Long:  statsLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Stats(cmd.Context(), domain.StatsArgs{BatchArgs: batchArgs(args)})
		},
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
