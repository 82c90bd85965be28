package adapter

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

func TestLocalTextFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalTextFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "notes.txt"), "top\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.txt"), "child\n")

		var visited []string
		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if containsPath(visited, filepath.Join(nestedDir, "child.txt")) {
			t.Fatalf("Walk() unexpectedly visited nested file when recursive is false")
		}

		if !containsPath(visited, filepath.Join(root, "notes.txt")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files but skips .git", func(t *testing.T) {
		adapter := NewLocalTextFSAdapter()

		root := t.TempDir()
		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.txt")
		writeTestFile(t, child, "child\n")

		gitDir := filepath.Join(root, ".git")
		mustMkdir(t, gitDir)
		writeTestFile(t, filepath.Join(gitDir, "HEAD.txt"), "ref\n")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}

		if containsPath(visited, filepath.Join(gitDir, "HEAD.txt")) {
			t.Fatalf("Walk() descended into .git")
		}
	})
}

func TestLocalTextFSAdapter_ReadWriteFile(t *testing.T) {
	adapter := NewLocalTextFSAdapter()

	path := filepath.Join(t.TempDir(), "notes.txt")
	content := "line one\r\nline two\n"

	if err := adapter.WriteFile(m.Path(path), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalTextFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalTextFSAdapter()

	path := filepath.Join(t.TempDir(), "notes.txt")
	content := []byte("hello world\n")
	writeTestBytes(t, path, content)

	expected := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := adapter.HashFile(m.Path(path))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash != expected {
		t.Fatalf("HashFile() = %s, want %s", hash, expected)
	}

	if _, err := adapter.HashFile(m.Path(path + ".missing")); err == nil {
		t.Fatalf("HashFile() expected error for missing file")
	}
}

func TestLocalTextFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalTextFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeTestFile(t, path, "x")

	info, err := adapter.FileInfo(m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
