package domain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"simpleedit.dev/pkg/simpleedit/internal/adapter"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
	"simpleedit.dev/pkg/simpleedit/pkg/journal"
)

const defaultFileMode os.FileMode = 0o644

var (
	// ErrNoPath is returned by Save when neither an explicit path nor a bound
	// path is available. Callers must ask the user for a destination first.
	ErrNoPath = errors.New("document has no path")

	// ErrInvalidEncoding is returned (wrapped in an IOError) when a file is
	// not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")
)

// IOError reports a failed load or save together with the underlying cause.
type IOError struct {
	Op   string
	Path m.Path
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type opKind int

const (
	opNone opKind = iota
	opEdit
	opReplace
	opClear
	opLoad
)

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithJournal attaches an undo journal. The document owns it from then on
// and closes it in Close.
func WithJournal(j journal.Journal[m.Snapshot]) DocumentOption {
	return func(d *Document) {
		d.history = j
	}
}

// Document is the editable text buffer plus its optional backing file.
//
// Offsets and lengths are measured in runes. A Document is not safe for
// concurrent use; it belongs to whoever created it.
type Document struct {
	fs   adapter.TextFSAdapter
	text string
	path m.Path

	dirty bool
	// hash of the file content at the last successful load or save.
	hash string

	history journal.Journal[m.Snapshot]
	// number of live entries in history; entries past it were undone.
	cursor uint64
	lastOp opKind
}

// NewDocument returns an empty, unbound document.
func NewDocument(fs adapter.TextFSAdapter, opts ...DocumentOption) *Document {
	d := &Document{fs: fs}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Text returns the current content.
func (d *Document) Text() string {
	return d.text
}

// Path returns the bound path, if any.
func (d *Document) Path() (m.Path, bool) {
	return d.path, !d.path.IsZero()
}

// Bound reports whether the document has a backing file.
func (d *Document) Bound() bool {
	return !d.path.IsZero()
}

// Dirty reports whether the content changed since the last load or save.
func (d *Document) Dirty() bool {
	return d.dirty
}

// SetText replaces the content with text typed by the user. Consecutive
// calls form a single undo step.
func (d *Document) SetText(text string) {
	if text == d.text {
		return
	}

	d.record(opEdit)
	d.text = text
	d.dirty = true
}

// Load replaces the content with the file at path and binds the document to
// it. On failure the document is left untouched.
func (d *Document) Load(path m.Path) error {
	data, err := d.fs.ReadFile(path)
	if err != nil {
		slog.Error("failed to load document", "path", path, "error", err)
		return &IOError{Op: "load", Path: path, Err: err}
	}

	if !utf8.Valid(data) {
		slog.Error("rejected document with invalid encoding", "path", path)
		return &IOError{Op: "load", Path: path, Err: ErrInvalidEncoding}
	}

	d.record(opLoad)
	d.text = string(data)
	d.path = path
	d.dirty = false
	d.hash = hashBytes(data)

	slog.Debug("loaded document", "path", path, "bytes", len(data))

	return nil
}

// Save writes the content verbatim. An empty path means the bound path. The
// existing file mode is kept. On failure the document is left untouched.
func (d *Document) Save(path m.Path) error {
	target := path
	if target.IsZero() {
		target = d.path
	}

	if target.IsZero() {
		return ErrNoPath
	}

	perm := defaultFileMode

	if info, err := d.fs.FileInfo(target); err == nil {
		if info.IsDir() {
			return &IOError{Op: "save", Path: target, Err: errors.New("is a directory")}
		}

		perm = info.Mode().Perm()
	}

	data := []byte(d.text)
	if err := d.fs.WriteFile(target, data, perm); err != nil {
		slog.Error("failed to save document", "path", target, "error", err)
		return &IOError{Op: "save", Path: target, Err: err}
	}

	d.path = target
	d.dirty = false
	d.hash = hashBytes(data)
	d.lastOp = opNone

	slog.Debug("saved document", "path", target, "bytes", len(data))

	return nil
}

// Clear resets the document to the empty, unbound state.
func (d *Document) Clear() {
	d.record(opClear)
	d.text = ""
	d.path = ""
	d.dirty = false
	d.hash = ""
}

// ReplaceAll replaces every non-overlapping occurrence of old with new, left
// to right, and returns the number of replacements. An empty old replaces
// nothing.
func (d *Document) ReplaceAll(old, new string) int {
	if old == "" {
		return 0
	}

	count := strings.Count(d.text, old)
	if count == 0 {
		return 0
	}

	d.record(opReplace)
	d.text = strings.ReplaceAll(d.text, old, new)
	d.dirty = true

	return count
}

// FindAll returns the rune offsets of every non-overlapping occurrence of
// needle, left to right. An empty needle matches nothing.
func (d *Document) FindAll(needle string) []int {
	offsets := []int{}
	if needle == "" {
		return offsets
	}

	needleRunes := utf8.RuneCountInString(needle)
	rest := d.text
	runeOffset := 0

	for {
		i := strings.Index(rest, needle)
		if i < 0 {
			return offsets
		}

		runeOffset += utf8.RuneCountInString(rest[:i])
		offsets = append(offsets, runeOffset)

		runeOffset += needleRunes
		rest = rest[i+len(needle):]
	}
}

// CharCount returns the length of the content in runes.
func (d *Document) CharCount() int {
	return utf8.RuneCountInString(d.text)
}

// Stats summarises the content.
func (d *Document) Stats() m.Stats {
	return m.Stats{
		Path:      d.path,
		Bound:     d.Bound(),
		Dirty:     d.dirty,
		Chars:     d.CharCount(),
		Bytes:     len(d.text),
		Lines:     countLines(d.text),
		Words:     len(strings.Fields(d.text)),
		Graphemes: uniseg.GraphemeClusterCount(d.text),
	}
}

// ChangedOnDisk reports whether the bound file differs from what was last
// loaded or saved. A deleted file counts as changed.
func (d *Document) ChangedOnDisk() (bool, error) {
	if d.path.IsZero() || d.hash == "" {
		return false, nil
	}

	hash, err := d.fs.HashFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}

		return false, &IOError{Op: "stat", Path: d.path, Err: err}
	}

	return hash != d.hash, nil
}

// Undo restores the state before the most recent mutation. It reports false
// when there is nothing to undo or no journal is attached.
func (d *Document) Undo() (bool, error) {
	if d.history == nil || d.cursor == 0 {
		return false, nil
	}

	snapshot, err := d.history.Get(d.cursor - 1)
	if err != nil {
		return false, fmt.Errorf("read undo journal: %w", err)
	}

	d.cursor--
	d.text = snapshot.Text
	d.path = snapshot.Path
	d.dirty = true
	d.hash = ""
	d.lastOp = opNone

	return true, nil
}

// Close releases the undo journal.
func (d *Document) Close() error {
	if d.history == nil {
		return nil
	}

	err := d.history.Close()
	d.history = nil
	d.cursor = 0

	return err
}

// record stores the current state before a mutation of the given kind.
// Journal failures only cost undo history, so they are logged and dropped.
func (d *Document) record(kind opKind) {
	defer func() { d.lastOp = kind }()

	if d.history == nil {
		return
	}

	if kind == opEdit && d.lastOp == opEdit {
		return
	}

	if d.cursor < d.history.Len() {
		if err := d.history.Truncate(d.cursor); err != nil {
			slog.Warn("failed to truncate undo journal", "error", err)
			return
		}
	}

	if err := d.history.Append(m.Snapshot{Text: d.text, Path: d.path}); err != nil {
		slog.Warn("failed to record undo snapshot", "error", err)
		return
	}

	d.cursor++
}

func countLines(text string) int {
	if text == "" {
		return 0
	}

	lines := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lines++
	}

	return lines
}

func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
