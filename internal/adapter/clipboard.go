package adapter

import "github.com/atotto/clipboard"

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard utilities.
type SystemClipboard struct{}

// NewSystemClipboard returns the platform clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
