package codebase

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions bounds a filesystem scan.
type ScanOptions struct {
	// MaxFileSize excludes files larger than this many bytes. Zero means
	// the default cap.
	MaxFileSize int64
}

// defaultMaxFileSize keeps generated bundles and vendored blobs out of the
// analysis set.
const defaultMaxFileSize = 512 * 1024

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	"vendor":        true,
	"dist":          true,
	"build":         true,
	"target":        true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".idea":         true,
	".vscode":       true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

// ScanRoot walks root and returns the sorted absolute paths of analyzable
// files plus per-language counts. Unreadable entries below the root are
// skipped, not fatal; an unreadable or non-directory root is an error.
func ScanRoot(root string, opts ScanOptions) ([]string, map[string]int, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan: %s is not a directory", absRoot)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}

	var files []string
	languages := make(map[string]int)

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != absRoot && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := LanguageForPath(path)
		if !ok {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}

		files = append(files, path)
		languages[lang]++
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan: walk: %w", err)
	}

	sort.Strings(files)
	return files, languages, nil
}
