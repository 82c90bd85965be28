// Package controller provides the user-facing front ends: a plain writer for
// scripts and pipes, and a Bubble Tea terminal UI with the interactive editor.
package controller

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"simpleedit.dev/pkg/simpleedit/internal/adapter"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

// ErrNotInteractive is returned by Edit when no terminal is attached.
var ErrNotInteractive = errors.New("the editor needs an interactive terminal")

// EditableDocument is the document surface the editor session drives.
type EditableDocument interface {
	Text() string
	SetText(text string)
	Path() (m.Path, bool)
	Dirty() bool
	Load(path m.Path) error
	Save(path m.Path) error
	Clear()
	ReplaceAll(old, new string) int
	FindAll(needle string) []int
	CharCount() int
	Stats() m.Stats
	ChangedOnDisk() (bool, error)
	Undo() (bool, error)
}

// EditOption is a functional option for Edit.
type EditOption func(*EditConfig)

// EditConfig holds configuration for an editor session.
type EditConfig struct {
	suggestedPath m.Path
	startupErr    error
	notice        string
	clipboard     adapter.Clipboard
}

// WithSuggestedPath pre-fills the destination prompt of an unbound document.
func WithSuggestedPath(path m.Path) EditOption {
	return func(c *EditConfig) {
		c.suggestedPath = path
	}
}

// WithStartupError shows err as the first notification of the session.
func WithStartupError(err error) EditOption {
	return func(c *EditConfig) {
		c.startupErr = err
	}
}

// WithNotice shows text as the first status message of the session.
func WithNotice(text string) EditOption {
	return func(c *EditConfig) {
		c.notice = text
	}
}

// WithClipboard sets the clipboard used by the copy key.
func WithClipboard(clipboard adapter.Clipboard) EditOption {
	return func(c *EditConfig) {
		c.clipboard = clipboard
	}
}

// NewEditConfig applies options over the defaults.
func NewEditConfig(options ...EditOption) EditConfig {
	cfg := EditConfig{clipboard: adapter.NewSystemClipboard()}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// SuggestedPath returns the destination offered to the first save.
func (c EditConfig) SuggestedPath() m.Path { return c.suggestedPath }

// StartupError returns the error shown when the session starts.
func (c EditConfig) StartupError() error { return c.startupErr }

// Notice returns the status message shown when the session starts.
func (c EditConfig) Notice() string { return c.notice }

// UI defines how results are presented to the user.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplaySearchResults(ctx context.Context, reports []m.SearchReport) error
	DisplayReplaceResults(ctx context.Context, reports []m.ReplaceReport, dryRun bool) error
	DisplayStatistics(ctx context.Context, stats []m.FileStats) error
	// Edit runs an interactive session until the user exits.
	Edit(ctx context.Context, doc EditableDocument, options ...EditOption) error
}

// NewUI picks the terminal UI when output is a TTY and the simple UI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
