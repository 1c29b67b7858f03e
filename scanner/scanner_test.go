package scanner

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagmetry/progress"
	"tagmetry/types"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestScanScenario2 exercises the sidecar precedence and summary counters
// named in spec.md §8 scenario 2.
func TestScanScenario2(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 1, 1)
	writePNG(t, filepath.Join(dir, "b.png"), 2, 3)

	writeText(t, filepath.Join(dir, "a.booru.txt"), "tag_one, tag two")
	writeText(t, filepath.Join(dir, "a.caption.txt"), "  short\ncaption ")
	writeText(t, filepath.Join(dir, "a.style.txt"), " painterly ")
	writeText(t, filepath.Join(dir, "b.tags.txt"), "legacy_tag_source")
	writeText(t, filepath.Join(dir, "b.txt"), "fallback caption")

	result, err := Scan(context.Background(), Options{Root: dir, MaxWorkers: 2}, nil, progress.Static)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.Records[0].Path != "a.png" || result.Records[1].Path != "b.png" {
		t.Fatalf("unexpected record order: %q, %q", result.Records[0].Path, result.Records[1].Path)
	}

	a := result.Records[0]
	if a.CaptionSources.BooruTags == nil || *a.CaptionSources.BooruTags != "tag_one, tag two" {
		t.Errorf("a.booruTags = %v, want %q", a.CaptionSources.BooruTags, "tag_one, tag two")
	}
	if a.CaptionSources.ShortCaption == nil || *a.CaptionSources.ShortCaption != "short caption" {
		t.Errorf("a.shortCaption = %v, want %q", a.CaptionSources.ShortCaption, "short caption")
	}
	if a.CaptionSources.StyleTags == nil || *a.CaptionSources.StyleTags != "painterly" {
		t.Errorf("a.styleTags = %v, want %q", a.CaptionSources.StyleTags, "painterly")
	}

	b := result.Records[1]
	if b.CaptionSources.BooruTags == nil || *b.CaptionSources.BooruTags != "legacy_tag_source" {
		t.Errorf("b.booruTags = %v, want %q", b.CaptionSources.BooruTags, "legacy_tag_source")
	}
	if b.CaptionSources.ShortCaption == nil || *b.CaptionSources.ShortCaption != "fallback caption" {
		t.Errorf("b.shortCaption = %v, want %q", b.CaptionSources.ShortCaption, "fallback caption")
	}
	if b.CaptionSources.StyleTags != nil {
		t.Errorf("b.styleTags = %v, want absent", *b.CaptionSources.StyleTags)
	}

	if result.Summary.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", result.Summary.TotalImages)
	}
	if result.Summary.WithBooruTags != 2 {
		t.Errorf("WithBooruTags = %d, want 2", result.Summary.WithBooruTags)
	}
	if result.Summary.WithShortCaption != 2 {
		t.Errorf("WithShortCaption = %d, want 2", result.Summary.WithShortCaption)
	}
	if result.Summary.WithStyleTags != 1 {
		t.Errorf("WithStyleTags = %d, want 1", result.Summary.WithStyleTags)
	}
}

func TestScanRejectsMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), Options{Root: filepath.Join(t.TempDir(), "missing")}, nil, progress.Static)
	if err == nil {
		t.Fatalf("expected an error for a missing dataset root")
	}
}

func TestHashesAreLowercaseHexOfCorrectLength(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "only.png"), 4, 4)

	result, err := Scan(context.Background(), Options{Root: dir}, nil, progress.Static)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	rec := result.Records[0]
	if len(rec.MD5) != 32 {
		t.Errorf("MD5 length = %d, want 32", len(rec.MD5))
	}
	if len(rec.SHA256) != 64 {
		t.Errorf("SHA256 length = %d, want 64", len(rec.SHA256))
	}
	for _, r := range rec.MD5 + rec.SHA256 {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("hash contains non-lowercase-hex rune %q", r)
		}
	}
}

// TestScanTreatsUnreadableDimensionsAsTolerated exercises spec.md §7's
// propagation policy: a file with a recognized extension but a header that
// cannot be identified must not abort the job. It is recorded with absent
// dimensions and a scan-stage warning, while its digests are still computed
// over the whole file.
func TestScanTreatsUnreadableDimensionsAsTolerated(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), 4, 4)
	writeText(t, filepath.Join(dir, "bad.png"), "not actually a png")

	var warnings []string
	reporter := progress.NewReporter(progress.SinkFunc(func(u progress.Update) {
		if u.Message != "" {
			warnings = append(warnings, u.Message)
		}
	}))

	result, err := Scan(context.Background(), Options{Root: dir}, reporter, progress.Static)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	var bad types.ImageRecord
	for _, rec := range result.Records {
		if rec.Path == "bad.png" {
			bad = rec
		}
	}
	if bad.Path == "" {
		t.Fatalf("expected a record for bad.png")
	}
	if bad.Width != 0 || bad.Height != 0 {
		t.Errorf("bad.png dimensions = %dx%d, want 0x0", bad.Width, bad.Height)
	}
	if len(bad.SHA256) != 64 {
		t.Errorf("bad.png SHA256 should still be computed, got %q", bad.SHA256)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "bad.png") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning mentioning bad.png, got %v", warnings)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  a   b\tc\n\nd  ")
	want := "a b c d"
	if got != want {
		t.Errorf("collapseWhitespace = %q, want %q", got, want)
	}
	if got := collapseWhitespace("   \n\t "); got != "" {
		t.Errorf("collapseWhitespace of all-whitespace = %q, want empty", got)
	}
}
