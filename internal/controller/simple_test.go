package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

func newBufferedCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return cmd, &out
}

func TestSimpleUI_DisplaySearchResults(t *testing.T) {
	cmd, out := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	err := ui.DisplaySearchResults(context.Background(), []m.SearchReport{
		{Path: "a.txt", Needle: "na", Offsets: []int{2, 4}},
		{Path: "b.txt", Needle: "na"},
		{Path: "c.txt", Needle: "na", Err: errors.New("permission denied")},
	})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "a.txt: 2, 4\n")
	assert.Contains(t, output, "b.txt: \n")
	assert.Contains(t, output, "c.txt: error: permission denied")
	assert.Contains(t, output, "Total: 2 occurrence(s) across 3 file(s)")
}

func TestSimpleUI_DisplayReplaceResults(t *testing.T) {
	reports := []m.ReplaceReport{
		{Path: "a.txt", Count: 3, Diff: "--- a.txt\n+++ a.txt\n-banana\n+bonono\n"},
		{Path: "b.txt"},
		{Path: "c.txt", Err: errors.New("boom")},
	}

	t.Run("dry run prints diffs", func(t *testing.T) {
		cmd, out := newBufferedCmd()

		require.NoError(t, NewSimpleUI(cmd).DisplayReplaceResults(context.Background(), reports, true))

		output := out.String()
		assert.Contains(t, output, "-banana")
		assert.Contains(t, output, "dry run")
		assert.Contains(t, output, "unchanged")
		assert.Contains(t, output, "error: boom")
		assert.Contains(t, strings.ToUpper(output), "TOTAL FILES 3")
	})

	t.Run("written files", func(t *testing.T) {
		written := append([]m.ReplaceReport{}, reports...)
		written[0].Written = true

		cmd, out := newBufferedCmd()

		require.NoError(t, NewSimpleUI(cmd).DisplayReplaceResults(context.Background(), written, false))

		output := out.String()
		assert.NotContains(t, output, "-banana")
		assert.Contains(t, output, "written")
	})
}

func TestSimpleUI_DisplayStatistics(t *testing.T) {
	cmd, out := newBufferedCmd()

	err := NewSimpleUI(cmd).DisplayStatistics(context.Background(), []m.FileStats{
		{Stats: m.Stats{Path: "a.txt", Bound: true, Chars: 5, Bytes: 6, Lines: 1, Words: 1, Graphemes: 5}},
		{Stats: m.Stats{Path: "b.txt"}, Err: errors.New("unreadable")},
	})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "a.txt")
	assert.Contains(t, output, "b.txt")
	assert.Contains(t, output, "error")
	assert.Contains(t, strings.ToUpper(output), "GRAPHEMES")
	assert.Contains(t, strings.ToUpper(output), "TOTAL FILES 2")
}

func TestSimpleUI_Edit(t *testing.T) {
	cmd, _ := newBufferedCmd()

	err := NewSimpleUI(cmd).Edit(context.Background(), newFakeDocument())
	assert.ErrorIs(t, err, ErrNotInteractive)
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd, out := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	assert.ErrorIs(t, ui.DisplaySearchResults(ctx, nil), context.Canceled)
	assert.ErrorIs(t, ui.DisplayStatistics(ctx, nil), context.Canceled)
	assert.Empty(t, out.String())
}

func TestNewUI(t *testing.T) {
	cmd, _ := newBufferedCmd()

	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.False(t, IsTTY(nil))
}
