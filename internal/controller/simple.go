package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

const (
	noneLabel  = "none"
	errorLabel = "error"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySearchResults prints one line per file with the comma-joined offsets.
func (s *SimpleUI) DisplaySearchResults(ctx context.Context, reports []m.SearchReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	total := 0

	for _, report := range reports {
		if report.Failed() {
			s.printf("%s: %s: %v\n", report.Path, errorLabel, report.Err)
			continue
		}

		total += len(report.Offsets)
		s.printf("%s: %s\n", report.Path, formatOffsets(report.Offsets))
	}

	s.printf("Total: %d occurrence(s) across %d file(s)\n", total, len(reports))

	return nil
}

// DisplayReplaceResults prints the replacement table and, for dry runs, the diffs.
func (s *SimpleUI) DisplayReplaceResults(ctx context.Context, reports []m.ReplaceReport, dryRun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dryRun {
		for _, report := range reports {
			if report.Diff != "" {
				s.printf("%s", report.Diff)
			}
		}
	}

	s.printf("\n%s", renderReplaceTable(reports, dryRun))

	return nil
}

// DisplayStatistics prints a statistics table.
func (s *SimpleUI) DisplayStatistics(ctx context.Context, stats []m.FileStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderStatsTable(stats))

	return nil
}

// Edit is not available without a terminal.
func (s *SimpleUI) Edit(ctx context.Context, _ EditableDocument, _ ...EditOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return ErrNotInteractive
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderReplaceTable(reports []m.ReplaceReport, dryRun bool) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Replacements", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	total := 0

	for _, report := range reports {
		total += report.Count
		table.Append([]string{string(report.Path), strconv.Itoa(report.Count), replaceStatus(report, dryRun)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(reports)),
		strconv.Itoa(total),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func replaceStatus(report m.ReplaceReport, dryRun bool) string {
	switch {
	case report.Failed():
		return fmt.Sprintf("%s: %v", errorLabel, report.Err)
	case report.Written:
		return "written"
	case report.Count > 0 && dryRun:
		return "dry run"
	default:
		return "unchanged"
	}
}

func renderStatsTable(stats []m.FileStats) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Chars", "Bytes", "Lines", "Words", "Graphemes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	var totalChars, totalBytes, totalLines, totalWords int

	for _, fs := range stats {
		if fs.Err != nil {
			table.Append([]string{string(fs.Stats.Path), errorLabel, "", "", "", ""})
			continue
		}

		st := fs.Stats
		totalChars += st.Chars
		totalBytes += st.Bytes
		totalLines += st.Lines
		totalWords += st.Words

		table.Append([]string{
			pathLabel(st.Path),
			strconv.Itoa(st.Chars),
			strconv.Itoa(st.Bytes),
			strconv.Itoa(st.Lines),
			strconv.Itoa(st.Words),
			strconv.Itoa(st.Graphemes),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(stats)),
		strconv.Itoa(totalChars),
		strconv.Itoa(totalBytes),
		strconv.Itoa(totalLines),
		strconv.Itoa(totalWords),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func formatOffsets(offsets []int) string {
	parts := make([]string, len(offsets))
	for i, offset := range offsets {
		parts[i] = strconv.Itoa(offset)
	}

	return strings.Join(parts, ", ")
}

func pathLabel(path m.Path) string {
	if path.IsZero() {
		return noneLabel
	}

	return string(path)
}
