package orchestrator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSuites are the corpus directories walked when no filter is given.
var DefaultSuites = []string{"language", "built-ins", "annexB"}

const fixtureSuffix = "_FIXTURE.js"

// TestFile is a discovered corpus file.
type TestFile struct {
	// Slash-separated path relative to the corpus root
	ID string
	// Path used to open the file
	Path string
}

// Discover finds test files below root. Without filters the default suites
// under root/test are walked; otherwise each filter names a file or
// directory, either as given or relative to root.
func Discover(root string, filters []string) ([]TestFile, error) {
	var starts []string
	if len(filters) == 0 {
		for _, suite := range DefaultSuites {
			dir := filepath.Join(root, "test", suite)
			if _, err := os.Stat(dir); err == nil {
				starts = append(starts, dir)
			}
		}
	} else {
		for _, filter := range filters {
			path, err := resolveFilter(root, filter)
			if err != nil {
				return nil, err
			}
			starts = append(starts, path)
		}
	}

	seen := make(map[string]struct{})
	var files []TestFile
	for _, start := range starts {
		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isTestFile(d.Name()) {
				return nil
			}
			id := fileID(root, path)
			if _, ok := seen[id]; ok {
				return nil
			}
			seen[id] = struct{}{}
			files = append(files, TestFile{ID: id, Path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", start, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// discoverAll walks every test file below dir. A missing dir yields nothing.
func discoverAll(dir string) ([]TestFile, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return Discover(".", []string{dir})
}

func resolveFilter(root, filter string) (string, error) {
	if _, err := os.Stat(filter); err == nil {
		return filter, nil
	}
	joined := filepath.Join(root, filter)
	if _, err := os.Stat(joined); err == nil {
		return joined, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", joined, err)
	}
	return "", &SetupError{What: "test path", Path: filter}
}

func isTestFile(name string) bool {
	return strings.HasSuffix(name, ".js") && !strings.HasSuffix(name, fixtureSuffix)
}

func fileID(root, path string) string {
	absRoot, err1 := filepath.Abs(root)
	absPath, err2 := filepath.Abs(path)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absRoot, absPath); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
