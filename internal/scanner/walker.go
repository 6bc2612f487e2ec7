package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions lists the file extensions recognized as playbook
// content when walking a directory target.
var DefaultExtensions = []string{".yml", ".yaml"}

// discoverFiles enumerates the files a scan covers.
//
// A file target yields exactly that file; a directory target is walked
// recursively for files matching the recognized extensions. Paths come
// back absolute and lexicographically sorted so repeated scans of an
// unchanged tree produce identical reports.
//
// The second return value is the scan root: the directory itself, or the
// containing directory for a single-file target. Renderers use it to
// display paths relative to the target.
func discoverFiles(target string, extensions []string) ([]string, string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, "", fmt.Errorf("resolve scan target: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("read scan target: %w", err)
	}

	if !info.IsDir() {
		return []string{abs}, filepath.Dir(abs), nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Skip directories we cannot access
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Hidden directories hold editor state, CI workflows, and vendored
		// collections rather than playbooks. The root itself is exempt so
		// an explicitly hidden target still scans.
		if d.IsDir() {
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		if matchesExtension(d.Name(), extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walk scan target: %w", err)
	}

	sort.Strings(files)
	return files, abs, nil
}

// matchesExtension reports whether name carries one of the recognized
// extensions. Matching is case-insensitive so WINDOWS.YML still counts.
func matchesExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}
