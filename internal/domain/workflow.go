// Package domain holds the document model and the use cases built on it.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"simpleedit.dev/pkg/simpleedit/internal/adapter"
	"simpleedit.dev/pkg/simpleedit/internal/controller"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
	"simpleedit.dev/pkg/simpleedit/pkg/journal"
)

const diffContextLines = 3

var _ controller.EditableDocument = (*Document)(nil)

// EditArgs contains the arguments for an interactive editing session.
type EditArgs struct {
	Path m.Path
}

// BatchArgs selects the files a batch command works on.
type BatchArgs struct {
	Paths      []m.Path
	Extensions []string
	Exclude    []string
	Threads    int
	// Report, when set, is where the YAML report is written.
	Report m.Path
}

// SearchArgs contains the arguments for searching files.
type SearchArgs struct {
	BatchArgs
	Needle string
}

// ReplaceArgs contains the arguments for replacing text in files.
type ReplaceArgs struct {
	BatchArgs
	Old    string
	New    string
	DryRun bool
}

// StatsArgs contains the arguments for file statistics.
type StatsArgs struct {
	BatchArgs
}

// Workflow exposes the editor use cases to the command layer.
type Workflow interface {
	Edit(ctx context.Context, args EditArgs) error
	Search(ctx context.Context, args SearchArgs) error
	Replace(ctx context.Context, args ReplaceArgs) error
	Stats(ctx context.Context, args StatsArgs) error
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*workflow)

// WithJournalDir enables undo journals for editor sessions, stored in dir.
func WithJournalDir(dir string) WorkflowOption {
	return func(w *workflow) {
		w.journalEnabled = true
		w.journalDir = dir
	}
}

// WithEditOptions adds options passed to every editor session.
func WithEditOptions(options ...controller.EditOption) WorkflowOption {
	return func(w *workflow) {
		w.editOptions = append(w.editOptions, options...)
	}
}

type workflow struct {
	fs      adapter.TextFSAdapter
	reports adapter.ReportStore
	ui      controller.UI

	journalEnabled bool
	journalDir     string
	editOptions    []controller.EditOption
}

// NewWorkflow creates a Workflow backed by the provided adapters and UI.
func NewWorkflow(
	fs adapter.TextFSAdapter,
	reports adapter.ReportStore,
	ui controller.UI,
	options ...WorkflowOption,
) Workflow {
	w := &workflow{
		fs:      fs,
		reports: reports,
		ui:      ui,
	}

	for _, opt := range options {
		opt(w)
	}

	return w
}

// Edit opens an editor session on an optional file. A file that cannot be
// loaded is reported inside the session, which then starts empty.
func (w *workflow) Edit(ctx context.Context, args EditArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var docOptions []DocumentOption

	if w.journalEnabled {
		history, err := journal.New[m.Snapshot](w.journalDir)
		if err != nil {
			slog.Warn("undo disabled, journal unavailable", "error", err)
		} else {
			docOptions = append(docOptions, WithJournal(history))
		}
	}

	doc := NewDocument(w.fs, docOptions...)

	defer func() {
		if err := doc.Close(); err != nil {
			slog.Warn("failed to close document", "error", err)
		}
	}()

	editOptions := append([]controller.EditOption{}, w.editOptions...)

	if !args.Path.IsZero() {
		editOptions = append(editOptions, controller.WithSuggestedPath(args.Path))

		switch err := doc.Load(args.Path); {
		case errors.Is(err, os.ErrNotExist):
			editOptions = append(editOptions, controller.WithNotice(fmt.Sprintf("New file %s; it is created on the first save", args.Path)))
		case err != nil:
			editOptions = append(editOptions, controller.WithStartupError(err))
		}
	}

	slog.Info("starting editor session", "path", args.Path)

	if err := w.ui.Edit(ctx, doc, editOptions...); err != nil {
		slog.Error("editor session failed", "error", err)
		return fmt.Errorf("edit: %w", err)
	}

	return nil
}

// Search finds needle in every selected file.
func (w *workflow) Search(ctx context.Context, args SearchArgs) error {
	files, err := w.expand(args.BatchArgs)
	if err != nil {
		return err
	}

	reports, err := runBatch(ctx, files, args.Threads, func(path m.Path) m.SearchReport {
		report := m.SearchReport{Path: path, Needle: args.Needle}

		doc := NewDocument(w.fs)
		if err := doc.Load(path); err != nil {
			report.Err = err
			return report
		}

		report.Offsets = doc.FindAll(args.Needle)

		return report
	})
	if err != nil {
		return err
	}

	if err := w.ui.DisplaySearchResults(ctx, reports); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if !args.Report.IsZero() {
		if err := w.reports.SaveSearchReports(args.Report, reports); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	return joinFailures(reports, func(r m.SearchReport) error { return r.Err })
}

// Replace rewrites every selected file. With DryRun nothing is written and
// the reports only carry the diff.
func (w *workflow) Replace(ctx context.Context, args ReplaceArgs) error {
	files, err := w.expand(args.BatchArgs)
	if err != nil {
		return err
	}

	reports, err := runBatch(ctx, files, args.Threads, func(path m.Path) m.ReplaceReport {
		return w.replaceFile(path, args)
	})
	if err != nil {
		return err
	}

	if err := w.ui.DisplayReplaceResults(ctx, reports, args.DryRun); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if !args.Report.IsZero() {
		if err := w.reports.SaveReplaceReports(args.Report, reports); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}

	return joinFailures(reports, func(r m.ReplaceReport) error { return r.Err })
}

func (w *workflow) replaceFile(path m.Path, args ReplaceArgs) m.ReplaceReport {
	report := m.ReplaceReport{Path: path, Old: args.Old, New: args.New}

	doc := NewDocument(w.fs)
	if err := doc.Load(path); err != nil {
		report.Err = err
		return report
	}

	before := doc.Text()

	report.Count = doc.ReplaceAll(args.Old, args.New)
	if report.Count == 0 {
		return report
	}

	diff, err := unifiedDiff(path, before, doc.Text())
	if err != nil {
		slog.Warn("failed to render diff", "path", path, "error", err)
	}

	report.Diff = diff

	if args.DryRun {
		return report
	}

	if err := doc.Save(""); err != nil {
		report.Err = err
		return report
	}

	report.Written = true
	slog.Info("replaced text", "path", path, "count", report.Count)

	return report
}

// Stats reports statistics for every selected file.
func (w *workflow) Stats(ctx context.Context, args StatsArgs) error {
	files, err := w.expand(args.BatchArgs)
	if err != nil {
		return err
	}

	stats, err := runBatch(ctx, files, args.Threads, func(path m.Path) m.FileStats {
		doc := NewDocument(w.fs)
		if err := doc.Load(path); err != nil {
			return m.FileStats{Stats: m.Stats{Path: path}, Err: err}
		}

		return m.FileStats{Stats: doc.Stats()}
	})
	if err != nil {
		return err
	}

	if err := w.ui.DisplayStatistics(ctx, stats); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return joinFailures(stats, func(s m.FileStats) error { return s.Err })
}

func (w *workflow) expand(args BatchArgs) ([]m.Path, error) {
	files, err := adapter.ExpandPaths(w.fs, args.Paths, adapter.PathFilter{
		Extensions: args.Extensions,
		Exclude:    args.Exclude,
	})
	if err != nil {
		slog.Error("failed to resolve paths", "paths", args.Paths, "error", err)
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	slog.Debug("resolved files", "count", len(files))

	return files, nil
}

// runBatch applies fn to every file with at most threads workers and returns
// the results in file order. Each call gets its own Document, so workers
// share nothing.
func runBatch[T any](ctx context.Context, files []m.Path, threads int, fn func(path m.Path) T) ([]T, error) {
	results := make([]T, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(threads)
	}

	for i, path := range files {
		i, path := i, path

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			results[i] = fn(path)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func joinFailures[T any](items []T, errOf func(T) error) error {
	var errs []error

	for _, item := range items {
		if err := errOf(item); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func unifiedDiff(path m.Path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: string(path),
		ToFile:   string(path),
		Context:  diffContextLines,
	})
}
