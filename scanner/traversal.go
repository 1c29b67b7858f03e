package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// discover walks root recursively and returns the absolute paths of every
// file with a supported extension, excluding any path matched by
// excludeGlobs (relative to root, doublestar syntax), sorted by ordinal
// byte comparison of the absolute path (spec.md §4.1).
func discover(root string, excludeGlobs []string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !supportedExtensions[ext] {
			return nil
		}

		if len(excludeGlobs) > 0 {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			for _, pattern := range excludeGlobs {
				matched, err := doublestar.Match(pattern, rel)
				if err != nil {
					return err
				}
				if matched {
					return nil
				}
			}
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		found = append(found, abs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

// relativeSlash renders path relative to root using forward slashes,
// regardless of host platform (spec.md §3 invariant: slash-normalized).
func relativeSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
