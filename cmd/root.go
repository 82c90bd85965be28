// Package cmd provides the root command and CLI setup for simpleedit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"simpleedit.dev/pkg/simpleedit/internal/adapter"
	"simpleedit.dev/pkg/simpleedit/internal/controller"
	"simpleedit.dev/pkg/simpleedit/internal/domain"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

var fsAdapter adapter.TextFSAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters files for batch commands.
var excludePatterns []string

var extensionsFlag []string
var reportFlag string
var parallelFlag int
var logFileFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalTextFSAdapter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		workflowOptions()...,
	)
}

func workflowOptions() []domain.WorkflowOption {
	if !viper.GetBool(journalEnabledKey) {
		return nil
	}

	return []domain.WorkflowOption{domain.WithJournalDir(viper.GetString(journalDirKey))}
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - .              files directly in the current directory
  - ./...          recursively scan current directory
  - ./notes/...    recursively scan the notes directory
  - a.txt b.txt    explicit files (always included, whatever their extension)`

const rootLongDescription = `simpleedit is a small plain-text editor. Run "simpleedit edit [file]" for the
interactive editor, or use search, replace and stats to work on many files
at once.

` + pathPatternsHelp

const searchLongDescription = `Find every occurrence of needle and print its character offsets.

` + pathPatternsHelp

const replaceLongDescription = `Replace every occurrence of old with new and save the files.
Use --dry-run to preview the changes as a unified diff.

` + pathPatternsHelp

const statsLongDescription = `Print character, byte, line, word and grapheme counts.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simpleedit",
		Short: "Minimal plain-text editor",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringSliceVar(&extensionsFlag, extensionsFlagName, viper.GetStringSlice(extensionsConfigKey), "file extensions included when scanning directories")
	bindFlagToConfig(flags.Lookup(extensionsFlagName), extensionsConfigKey)

	flags.StringVarP(&reportFlag, reportFlagName, "r", viper.GetString(reportConfigKey), "write a YAML report of search or replace results to this file")
	bindFlagToConfig(flags.Lookup(reportFlagName), reportConfigKey)

	flags.IntVarP(&parallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files processed in parallel")
	bindFlagToConfig(flags.Lookup(runParallelFlagName), runParallelConfigKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// batchArgs collects the file selection shared by search, replace and stats.
func batchArgs(args []string) domain.BatchArgs {
	return domain.BatchArgs{
		Paths:      parsePaths(args),
		Extensions: viper.GetStringSlice(extensionsConfigKey),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Threads:    viper.GetInt(runParallelConfigKey),
		Report:     m.Path(viper.GetString(reportConfigKey)),
	}
}
