package controller

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

// header, blank line and footer.
const pagerChromeLines = 4

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	pathStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	cmd *cobra.Command
	// size reports the terminal width and height; zero height disables paging.
	size func() (int, int)
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	p := &TUI{cmd: cmd}
	p.size = p.terminalSize

	return p
}

// DisplaySearchResults shows the offsets of every file, wrapped to the terminal width.
func (p *TUI) DisplaySearchResults(ctx context.Context, reports []m.SearchReport) error {
	width, _ := p.size()
	total := 0

	lines := make([]string, 0, len(reports)*2)

	for _, report := range reports {
		lines = append(lines, pathStyle.Render(string(report.Path)))

		switch {
		case report.Failed():
			lines = append(lines, "  "+errorStyle.Render(fmt.Sprintf("%s: %v", errorLabel, report.Err)))
		case len(report.Offsets) == 0:
			lines = append(lines, "  "+faintStyle.Render("no matches"))
		default:
			total += len(report.Offsets)
			wrapped := wordwrap.String(formatOffsets(report.Offsets), width-2)

			for _, line := range strings.Split(wrapped, "\n") {
				lines = append(lines, "  "+line)
			}
		}
	}

	summary := fmt.Sprintf("Total: %d occurrence(s) across %d file(s)", total, len(reports))

	return p.show(ctx, newPagerModel(fmt.Sprintf("Search results for %q", needleOf(reports)), lines, summary))
}

// DisplayReplaceResults shows the replacement table and, for dry runs, the diffs.
func (p *TUI) DisplayReplaceResults(ctx context.Context, reports []m.ReplaceReport, dryRun bool) error {
	var lines []string

	if dryRun {
		for _, report := range reports {
			if report.Diff == "" {
				continue
			}

			lines = append(lines, colorDiff(report.Diff)...)
		}
	}

	lines = append(lines, strings.Split(strings.TrimRight(renderReplaceTable(reports, dryRun), "\n"), "\n")...)

	title := "Replace results"
	if dryRun {
		title += " (dry run)"
	}

	return p.show(ctx, newPagerModel(title, lines, ""))
}

// DisplayStatistics shows the statistics table.
func (p *TUI) DisplayStatistics(ctx context.Context, stats []m.FileStats) error {
	lines := strings.Split(strings.TrimRight(renderStatsTable(stats), "\n"), "\n")

	return p.show(ctx, newPagerModel("Statistics", lines, ""))
}

// Edit runs the interactive editor on doc until the user exits.
func (p *TUI) Edit(ctx context.Context, doc EditableDocument, options ...EditOption) error {
	model := newEditorModel(doc, NewEditConfig(options...))

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(p.cmd.InOrStdin()),
		tea.WithOutput(p.cmd.OutOrStdout()),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	return nil
}

// show prints the model when it fits on screen and pages it otherwise.
func (p *TUI) show(ctx context.Context, model pagerModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model.width, model.height = p.size()

	out := p.cmd.OutOrStdout()

	if !model.needsPagination() {
		_, err := fmt.Fprintln(out, model.View())
		return err
	}

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(p.cmd.InOrStdin()),
		tea.WithOutput(out),
	)
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (p *TUI) terminalSize() (int, int) {
	if f, ok := p.cmd.OutOrStdout().(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width, height
		}
	}

	return defaultWidth, 0
}

func needleOf(reports []m.SearchReport) string {
	if len(reports) == 0 {
		return ""
	}

	return reports[0].Needle
}

func colorDiff(diff string) []string {
	added := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removed := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	raw := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines = append(lines, pathStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			lines = append(lines, added.Render(line))
		case strings.HasPrefix(line, "-"):
			lines = append(lines, removed.Render(line))
		default:
			lines = append(lines, line)
		}
	}

	return lines
}

// pagerModel shows a list of pre-rendered lines with scrolling.
type pagerModel struct {
	title   string
	lines   []string
	summary string
	offset  int
	width   int
	height  int
}

func newPagerModel(title string, lines []string, summary string) pagerModel {
	return pagerModel{
		title:   title,
		lines:   lines,
		summary: summary,
	}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.width = msg.Width
		pm.height = msg.Height
		pm.offset = min(pm.offset, pm.maxOffset())

		return pm, nil

	case tea.KeyMsg:
		return pm.handleKeyPress(msg)
	}

	return pm, nil
}

func (pm pagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return pm, tea.Quit
	case "down", "j":
		pm.offset = min(pm.offset+1, pm.maxOffset())
	case "up", "k":
		pm.offset = max(pm.offset-1, 0)
	case "pgdown", " ", "f":
		pm.offset = min(pm.offset+pm.linesPerPage(), pm.maxOffset())
	case "pgup", "b":
		pm.offset = max(pm.offset-pm.linesPerPage(), 0)
	case "home", "g":
		pm.offset = 0
	case "end", "G":
		pm.offset = pm.maxOffset()
	}

	return pm, nil
}

func (pm pagerModel) linesPerPage() int {
	if pm.height <= 0 {
		return len(pm.lines)
	}

	return max(pm.height-pagerChromeLines, 1)
}

func (pm pagerModel) maxOffset() int {
	return max(len(pm.lines)-pm.linesPerPage(), 0)
}

// needsPagination returns true if the lines do not fit on screen.
func (pm pagerModel) needsPagination() bool {
	return pm.height > 0 && len(pm.lines) > pm.linesPerPage()
}

func (pm pagerModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(pm.title))
	b.WriteString("\n\n")

	visible := pm.lines
	if pm.needsPagination() {
		end := min(pm.offset+pm.linesPerPage(), len(pm.lines))
		visible = pm.lines[pm.offset:end]
	}

	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if pm.summary != "" {
		b.WriteString(pm.summary)
		b.WriteString("\n")
	}

	if pm.needsPagination() {
		b.WriteString(helpStyle.Render(fmt.Sprintf(
			"lines %d-%d of %d • ↑/↓ scroll • pgup/pgdn page • q quit",
			pm.offset+1, min(pm.offset+pm.linesPerPage(), len(pm.lines)), len(pm.lines),
		)))
	}

	return strings.TrimRight(b.String(), "\n")
}
