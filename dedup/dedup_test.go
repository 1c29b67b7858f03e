package dedup

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"tagmetry/progress"
)

func writePNG(t *testing.T, dir, name string, fill color.RGBA, size int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, fill)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestDCT2DConstantImageHasZeroACEnergy(t *testing.T) {
	n := 8
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = 100
		}
	}

	spectrum := dct2D(matrix)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u == 0 && v == 0 {
				continue
			}
			if math.Abs(spectrum[u][v]) > 1e-9 {
				t.Errorf("expected AC term (%d,%d) ~= 0 for a constant image, got %v", u, v, spectrum[u][v])
			}
		}
	}
}

func TestHammingDistance(t *testing.T) {
	a := uint64(0b1010)
	b := uint64(0b1000)
	if d := hammingDistance(a, b); d != 1 {
		t.Fatalf("hammingDistance = %d, want 1", d)
	}
	if d := hammingDistance(a, a); d != 0 {
		t.Fatalf("hammingDistance(a,a) = %d, want 0", d)
	}
}

func TestDetectAllIdenticalBytesDataset(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{R: 255, A: 255}

	// All three files are written from the same pixel buffer, so they are
	// byte-identical, not merely visually identical.
	src := writePNG(t, dir, "a.png", red, 16)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	var paths []string
	paths = append(paths, src)
	for _, name := range []string{"b.png", "c.png"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		paths = append(paths, p)
	}

	report, err := Detect(context.Background(), paths, DefaultOptions(), progress.Static)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if report.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", report.TotalFiles)
	}
	if len(report.ExactGroups) != 1 {
		t.Fatalf("expected exactly one exact group, got %d", len(report.ExactGroups))
	}
	if len(report.ExactGroups[0].Paths) != 3 {
		t.Errorf("expected exact group of size 3, got %d", len(report.ExactGroups[0].Paths))
	}
	if len(report.NearFindings) != 0 {
		t.Errorf("expected zero near-duplicate findings, got %d", len(report.NearFindings))
	}
}

func TestDetectDistinctImages(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", color.RGBA{R: 255, A: 255}, 32)
	b := writePNG(t, dir, "b.png", color.RGBA{B: 255, A: 255}, 32)

	report, err := Detect(context.Background(), []string{a, b}, DefaultOptions(), progress.Static)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if report.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", report.TotalFiles)
	}
	if len(report.ExactGroups) != 0 {
		t.Errorf("expected no exact groups for distinct images, got %d", len(report.ExactGroups))
	}
	for _, f := range report.NearFindings {
		if f.Similarity != 1-float64(f.Distance)/64 {
			t.Errorf("similarity mismatch for finding %+v", f)
		}
	}
}

// TestDetectExactGroupMemberStillScoresAsNearDuplicate exercises spec.md §8
// scenario 1: {a, a_copy (byte-identical to a), b (near-duplicate of a), c
// (distinct)}. Membership in the exact group must not remove a or a_copy
// from near-duplicate scoring against b.
func TestDetectExactGroupMemberStillScoresAsNearDuplicate(t *testing.T) {
	dir := t.TempDir()

	// a and a_copy are flat red squares written from the same pixel buffer,
	// so they are byte-identical. b is a flat square of a very slightly
	// different shade: a constant image's DCT spectrum is all but zero
	// outside the DC term, so b's perceptual hash lands at or near the same
	// value as a's even though its bytes differ. c is a distinct pattern.
	src := writePNG(t, dir, "a.png", color.RGBA{R: 255, A: 255}, 32)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	aCopy := filepath.Join(dir, "a_copy.png")
	if err := os.WriteFile(aCopy, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", aCopy, err)
	}
	b := writePNG(t, dir, "b.png", color.RGBA{R: 250, A: 255}, 32)
	c := writePNG(t, dir, "c.png", color.RGBA{B: 255, A: 255}, 32)

	report, err := Detect(context.Background(), []string{src, aCopy, b, c}, DefaultOptions(), progress.Static)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if report.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", report.TotalFiles)
	}
	if len(report.ExactGroups) != 1 || len(report.ExactGroups[0].Paths) != 2 {
		t.Fatalf("expected one exact group of size 2, got %+v", report.ExactGroups)
	}
	if len(report.NearFindings) == 0 {
		t.Fatalf("expected at least one near-duplicate finding involving b")
	}
	if len(report.NearGroups) == 0 || len(report.NearGroups[0].Paths) < 2 {
		t.Fatalf("expected at least one near-duplicate group of size >= 2, got %+v", report.NearGroups)
	}

	var bScored bool
	for _, f := range report.NearFindings {
		if f.Left == b || f.Right == b {
			bScored = true
		}
	}
	if !bScored {
		t.Errorf("expected b to be scored against an exact-group member, findings: %+v", report.NearFindings)
	}
}

func TestGroupNearAggregateScoreAndGroupID(t *testing.T) {
	fps := []Fingerprint{
		{Path: "a", SHA256: "1", PHash: 0b0000000000000000000000000000000000000000000000000000000000},
		{Path: "b", SHA256: "2", PHash: 0b0000000000000000000000000000000000000000000000000000000001},
		{Path: "c", SHA256: "3", PHash: 0b1111111111111111111111111111111111111111111111111111111111},
	}
	opts := DefaultOptions()
	findings := scoreNearDuplicates(fps, opts)
	groups := groupNear(fps, findings, opts)

	if len(groups) != 1 {
		t.Fatalf("expected exactly one near-duplicate group (a,b), got %d: %+v", len(groups), groups)
	}
	if len(groups[0].Paths) != 2 {
		t.Fatalf("expected group of size 2, got %d", len(groups[0].Paths))
	}
	if groups[0].GroupID != "near-1" {
		t.Errorf("GroupID = %q, want near-1", groups[0].GroupID)
	}
	if want := 1 - 1.0/64; groups[0].AggregateScore != want {
		t.Errorf("AggregateScore = %v, want %v", groups[0].AggregateScore, want)
	}
}
