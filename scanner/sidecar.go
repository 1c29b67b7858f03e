package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tagmetry/types"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace trims leading/trailing whitespace and collapses
// internal runs of whitespace to a single space (spec.md §4.1 step 3).
func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// readSidecar reads a candidate file as UTF-8 and normalizes its content.
// It returns ("", false) if the file is absent, unreadable, or empty after
// normalization.
func readSidecar(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	normalized := collapseWhitespace(string(data))
	if normalized == "" {
		return "", false
	}
	return normalized, true
}

// resolveSidecars locates and reads the three caption sidecar families for
// an image at imagePath, applying the preferred-then-fallback rules of
// spec.md §4.1 step 3.
func resolveSidecars(imagePath string) types.CaptionSources {
	dir := filepath.Dir(imagePath)
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	at := func(suffix string) string { return filepath.Join(dir, base+suffix) }

	var sources types.CaptionSources

	if v, ok := readSidecar(at(".booru.txt")); ok {
		sources.BooruTags = &v
	} else if v, ok := readSidecar(at(".tags.txt")); ok {
		sources.BooruTags = &v
	}

	if v, ok := readSidecar(at(".caption.txt")); ok {
		sources.ShortCaption = &v
	} else if v, ok := readSidecar(at(".txt")); ok {
		sources.ShortCaption = &v
	}

	if v, ok := readSidecar(at(".style.txt")); ok {
		sources.StyleTags = &v
	}

	return sources
}
