package model

// Stats summarises the content of a document.
//
// Chars is the rune count and is the unit used by every offset the editor
// reports. Bytes and Graphemes are informational.
type Stats struct {
	Path      Path
	Bound     bool
	Dirty     bool
	Chars     int
	Bytes     int
	Lines     int
	Words     int
	Graphemes int
}

// FileStats pairs statistics with the error hit while loading the file, if any.
type FileStats struct {
	Stats Stats
	Err   error
}
