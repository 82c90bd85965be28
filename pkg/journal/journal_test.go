package journal

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("New creates file under dir", func(t *testing.T) {
		dir := t.TempDir()

		j, err := New[int](dir)
		require.NoError(t, err)
		require.NotNil(t, j)
		require.Contains(t, j.Path(), dir)

		defer j.Close()
	})

	t.Run("Append and Get", func(t *testing.T) {
		j, err := New[string](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.Append("first"))
		require.NoError(t, j.Append("second"))

		val, err := j.Get(0)
		require.NoError(t, err)
		require.Equal(t, "first", val)

		val, err = j.Get(1)
		require.NoError(t, err)
		require.Equal(t, "second", val)

		val, err = j.Get(3)
		require.Error(t, err)
		require.Equal(t, "", val)
	})

	t.Run("Len tracks appends", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.Equal(t, uint64(0), j.Len())

		require.NoError(t, j.AppendBatch([]int{1, 2, 3}))
		require.Equal(t, uint64(3), j.Len())
	})

	t.Run("Range iterates in order", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		expected := []int{100, 200, 300}
		require.NoError(t, j.AppendBatch(expected))

		var collected []int
		err = j.Range(func(_ uint64, item int) error {
			collected = append(collected, item)
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, expected, collected)
	})

	t.Run("Range callback error stops iteration", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.AppendBatch([]int{1, 2, 3}))

		count := 0
		rangeErr := j.Range(func(index uint64, _ int) error {
			count++
			if index == 1 {
				return errors.New("stop at index 1")
			}
			return nil
		})

		require.Error(t, rangeErr)
		require.Equal(t, 2, count)
	})

	t.Run("Truncate drops the tail and keeps appending", func(t *testing.T) {
		j, err := New[string](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.AppendBatch([]string{"a", "b", "c", "d"}))
		require.NoError(t, j.Truncate(2))
		require.Equal(t, uint64(2), j.Len())

		require.NoError(t, j.Append("e"))

		var collected []string
		require.NoError(t, j.Range(func(_ uint64, item string) error {
			collected = append(collected, item)
			return nil
		}))
		require.Equal(t, []string{"a", "b", "e"}, collected)
	})

	t.Run("Truncate to zero", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.AppendBatch([]int{1, 2}))
		require.NoError(t, j.Truncate(0))
		require.Equal(t, uint64(0), j.Len())

		require.NoError(t, j.Append(7))
		val, err := j.Get(0)
		require.NoError(t, err)
		require.Equal(t, 7, val)
	})

	t.Run("Truncate beyond length is a no-op", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		require.NoError(t, j.Append(1))
		require.NoError(t, j.Truncate(5))
		require.Equal(t, uint64(1), j.Len())
	})

	t.Run("Close removes the backing file", func(t *testing.T) {
		j, err := New[int](t.TempDir())
		require.NoError(t, err)

		require.NoError(t, j.Append(1))
		require.NoError(t, j.Close())

		_, statErr := os.Stat(j.Path())
		require.True(t, os.IsNotExist(statErr))

		require.Error(t, j.Append(2))
		require.NoError(t, j.Close())
	})

	t.Run("structs round trip", func(t *testing.T) {
		type snapshot struct {
			Text string
			Path string
		}

		j, err := New[snapshot](t.TempDir())
		require.NoError(t, err)
		defer j.Close()

		first := snapshot{Text: "hello", Path: "a.txt"}
		second := snapshot{Text: "", Path: ""}

		require.NoError(t, j.Append(first))
		require.NoError(t, j.Append(second))

		got, err := j.Get(0)
		require.NoError(t, err)
		require.Equal(t, first, got)

		got, err = j.Get(1)
		require.NoError(t, err)
		require.Equal(t, second, got)
	})
}

func BenchmarkAppend(b *testing.B) {
	j, err := New[int](b.TempDir())
	if err != nil {
		b.Fatalf("failed to create journal: %v", err)
	}
	defer j.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = j.Append(i)
	}
}
