package core

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
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

func TestRunAnalysisEmptyDataset(t *testing.T) {
	dir := t.TempDir()

	result := RunAnalysis(context.Background(), Request{
		InputDir:                 dir,
		EnableDuplicateDetection: true,
		EnableTagMetrics:         true,
		EnableRecommendations:    true,
	}, progress.Noop, DefaultMetricsOptions())

	if result.State != StateCompleted {
		t.Fatalf("State = %s, want Completed (error: %s)", result.State, result.Error)
	}

	metricsPath := result.Outputs["metrics"]
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("reading metrics.json: %v", err)
	}
	var m types.MetricsReport
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decoding metrics.json: %v", err)
	}
	if m.Entropy != 0 {
		t.Errorf("Entropy = %v, want 0 for an empty dataset", m.Entropy)
	}
	if m.EffectiveTagCount != 1 {
		t.Errorf("EffectiveTagCount = %v, want 1", m.EffectiveTagCount)
	}

	dupData, err := os.ReadFile(result.Outputs["duplicates"])
	if err != nil {
		t.Fatalf("reading duplicates.json: %v", err)
	}
	var dr types.DuplicateReport
	if err := json.Unmarshal(dupData, &dr); err != nil {
		t.Fatalf("decoding duplicates.json: %v", err)
	}
	if len(dr.ExactGroups) != 0 || len(dr.NearGroups) != 0 {
		t.Errorf("expected no duplicate groups for an empty dataset")
	}
}

func TestRunAnalysisSingleImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "only.png"), 8, 8)
	writeFile(t, filepath.Join(dir, "only.booru.txt"), "solo, tag")

	result := RunAnalysis(context.Background(), Request{
		InputDir:                 dir,
		EnableDuplicateDetection: true,
		EnableTagMetrics:         true,
	}, progress.Noop, DefaultMetricsOptions())

	if result.State != StateCompleted {
		t.Fatalf("State = %s, want Completed (error: %s)", result.State, result.Error)
	}

	lines, err := os.ReadFile(result.Outputs["records"])
	if err != nil {
		t.Fatalf("reading dataset.jsonl: %v", err)
	}
	count := 0
	for _, b := range lines {
		if b == '\n' {
			count++
		}
	}
	if count != 1 {
		t.Errorf("dataset.jsonl line count = %d, want 1", count)
	}

	dupData, err := os.ReadFile(result.Outputs["duplicates"])
	if err != nil {
		t.Fatalf("reading duplicates.json: %v", err)
	}
	var dr types.DuplicateReport
	if err := json.Unmarshal(dupData, &dr); err != nil {
		t.Fatalf("decoding duplicates.json: %v", err)
	}
	if len(dr.ExactGroups) != 0 || len(dr.NearGroups) != 0 {
		t.Errorf("expected no duplicate groups for a single image")
	}
}

func TestRunAnalysisInputNotFound(t *testing.T) {
	result := RunAnalysis(context.Background(), Request{
		InputDir: filepath.Join(t.TempDir(), "does-not-exist"),
	}, progress.Noop, DefaultMetricsOptions())

	if result.State != StateFailed {
		t.Fatalf("State = %s, want Failed", result.State)
	}
	if result.Error == "" {
		t.Errorf("expected a non-empty error message")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
