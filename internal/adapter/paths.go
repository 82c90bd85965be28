package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

const recursiveSuffix = "/..."

// PathFilter selects which files a batch command operates on.
type PathFilter struct {
	// Extensions lists accepted file extensions (".txt"). Empty accepts all.
	Extensions []string
	// Exclude holds regular expressions matched against the file path.
	Exclude []string
}

// ExpandPaths resolves CLI path arguments into a sorted, de-duplicated list
// of files.
//
// A plain file is always accepted (extension filters only apply to files
// discovered by walking). A directory is scanned without descending, and
// "dir/..." is scanned recursively. No arguments means the current directory.
func ExpandPaths(fs TextFSAdapter, patterns []m.Path, filter PathFilter) ([]m.Path, error) {
	excludes, err := compileExcludes(filter.Exclude)
	if err != nil {
		return nil, err
	}

	if len(patterns) == 0 {
		patterns = []m.Path{"."}
	}

	seen := make(map[m.Path]struct{})
	files := make([]m.Path, 0, len(patterns))

	add := func(path m.Path) {
		if isExcluded(string(path), excludes) {
			return
		}

		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, pattern := range patterns {
		root, recursive := splitRecursive(string(pattern))

		info, err := fs.FileInfo(m.Path(root))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", pattern, err)
		}

		if !info.IsDir() {
			add(m.Path(root))
			continue
		}

		err = fs.Walk(m.Path(root), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !hasExtension(path, filter.Extensions) {
				return nil
			}

			add(m.Path(path))

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", pattern, err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i] < files[j]
	})

	return files, nil
}

func splitRecursive(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if strings.HasSuffix(pattern, recursiveSuffix) {
		root := strings.TrimSuffix(pattern, recursiveSuffix)
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return pattern, false
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range extensions {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}

		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}

		if ext == want {
			return true
		}
	}

	return false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

func isExcluded(path string, excludes []*regexp.Regexp) bool {
	for _, re := range excludes {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}
