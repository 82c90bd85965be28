// Package model defines the data structures shared by the editor layers.
package model

// Path represents a file system path. The zero value means "no path".
type Path string

// IsZero reports whether the path is empty.
func (p Path) IsZero() bool {
	return p == ""
}

// Snapshot captures the editable state of a document at one point in time.
type Snapshot struct {
	Text string
	Path Path
}
