// Package journal provides an append-only, gob-encoded log kept on disk.
//
// The editor uses it as undo history so that long sessions do not hold every
// previous version of a document in memory.
package journal

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultDir is used when New is called with an empty directory.
var DefaultDir = filepath.Join(os.TempDir(), "simpleedit-journal")

// Journal is an append-only log of items of type T.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	// Truncate drops every item at or after index n.
	Truncate(n uint64) error
	Close() error
}

type fileJournal[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// New creates a journal backed by a fresh temp file under dir.
func New[T any](dir string) (Journal[T], error) {
	if dir == "" {
		dir = DefaultDir
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "journal-*.gob")
	if err != nil {
		slog.Error("failed to create journal file", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	slog.Debug("created journal", "path", file.Name())

	return &fileJournal[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements Journal.
func (j *fileJournal[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.appendLocked(item)
}

func (j *fileJournal[T]) appendLocked(item T) error {
	if j.file == nil {
		return fmt.Errorf("journal %s is closed", j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	j.length++
	slog.Debug("appended item", "path", j.path, "index", j.length-1)

	return nil
}

// AppendBatch implements Journal.
func (j *fileJournal[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := j.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Path implements Journal.
func (j *fileJournal[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *fileJournal[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Get implements Journal.
func (j *fileJournal[T]) Get(index uint64) (T, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var found T

	if index >= j.length {
		slog.Warn("get index out of bounds", "path", j.path, "index", index, "length", j.length)
		return found, fmt.Errorf("index %d out of bounds (length %d)", index, j.length)
	}

	err := j.rangeLocked(index+1, func(i uint64, item T) error {
		if i == index {
			found = item
		}

		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return found, nil
}

// Range implements Journal.
func (j *fileJournal[T]) Range(fn func(index uint64, item T) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.rangeLocked(j.length, fn)
}

func (j *fileJournal[T]) rangeLocked(limit uint64, fn func(index uint64, item T) error) error {
	file, err := os.Open(j.path)
	if err != nil {
		slog.Error("failed to open journal for reading", "path", j.path, "error", err)
		return fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close file", "path", j.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); i < limit; i++ {
		// A fresh value per item: gob leaves absent fields untouched.
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item", "path", j.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Truncate implements Journal. The backing file is rewritten with the kept
// prefix, since a gob stream cannot be shortened in place.
func (j *fileJournal[T]) Truncate(n uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n >= j.length {
		return nil
	}

	kept := make([]T, 0, n)

	err := j.rangeLocked(n, func(_ uint64, item T) error {
		kept = append(kept, item)
		return nil
	})
	if err != nil {
		return err
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			slog.Error("failed to close file", "path", j.path, "error", err)
		}
	}

	file, err := os.Create(j.path)
	if err != nil {
		j.file = nil
		return fmt.Errorf("failed to recreate journal: %w", err)
	}

	j.file = file
	j.encoder = gob.NewEncoder(file)
	j.length = 0

	for _, item := range kept {
		if err := j.appendLocked(item); err != nil {
			return err
		}
	}

	slog.Debug("truncated journal", "path", j.path, "length", j.length)

	return nil
}

// Close implements Journal. The backing file is removed.
func (j *fileJournal[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	err := j.file.Close()
	j.file = nil

	if err != nil {
		slog.Error("failed to close file", "path", j.path, "error", err)
		return err
	}

	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}
