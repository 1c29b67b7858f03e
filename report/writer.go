// Package report serializes the pipeline's artifacts to disk: the JSONL
// record stream, the summary index, the metrics report (JSON and Markdown),
// the recommendation evaluation, and the duplicate report (spec.md §4.6).
// Every writer emits UTF-8 without a byte-order mark and LF line endings.
// Every upstream artifact is already deterministically ordered before it
// reaches this package, so repeated runs on the same input produce the same
// bytes, except for the generatedAt timestamps the metrics report and the
// recommendation evaluation carry (and the Markdown summary repeats).
package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"tagmetry/types"
)

// Paths names every artifact file a run may produce, relative to an output
// directory.
type Paths struct {
	Records         string
	Summary         string
	Metrics         string
	MetricsSummary  string
	Recommendations string
	Duplicates      string
}

// DefaultPaths returns the conventional artifact file names inside dir.
func DefaultPaths(dir string) Paths {
	return Paths{
		Records:         filepath.Join(dir, "dataset.jsonl"),
		Summary:         filepath.Join(dir, "summary.json"),
		Metrics:         filepath.Join(dir, "metrics.json"),
		MetricsSummary:  filepath.Join(dir, "metrics.md"),
		Recommendations: filepath.Join(dir, "recommendations.json"),
		Duplicates:      filepath.Join(dir, "duplicates.json"),
	}
}

// WriteRecords writes one compact JSON object per line, in the order given.
func WriteRecords(path string, records []types.ImageRecord) error {
	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return writeFile(path, buf.Bytes())
}

// WriteSummary writes the pretty-printed summary index.
func WriteSummary(path string, summary types.SummaryIndex) error {
	return writePrettyJSON(path, summary)
}

// WriteMetrics writes the pretty-printed metrics report.
func WriteMetrics(path string, metrics types.MetricsReport) error {
	return writePrettyJSON(path, metrics)
}

// WriteRecommendations writes the pretty-printed recommendation evaluation.
func WriteRecommendations(path string, evaluation types.RecommendationEvaluation) error {
	return writePrettyJSON(path, evaluation)
}

// WriteDuplicates writes the pretty-printed duplicate report.
func WriteDuplicates(path string, report types.DuplicateReport) error {
	return writePrettyJSON(path, report)
}

func writePrettyJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
