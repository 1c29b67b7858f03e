package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tagmetry/dedup"
	"tagmetry/metrics"
	"tagmetry/progress"
	"tagmetry/recommend"
	"tagmetry/report"
	"tagmetry/scanner"
	"tagmetry/tagerr"
	"tagmetry/tagnorm"
	"tagmetry/types"
)

// MetricsOptions carries the tunables of the metrics evaluator that are not
// part of Request; a caller embedding the core in a different surface can
// override them, while the CLI wrapper uses DefaultMetricsOptions.
type MetricsOptions struct {
	TopKs                  []int
	Target                 map[string]float64
	MinDocumentFrequency   int
	MaxStopCandidates      int
	MinCooccurrence        int
	MaxPMIAnomalies        int
	CommunityEdgeThreshold float64
	CommunityPreviewSize   int
	MaxTokenLength         int
}

// DefaultMetricsOptions returns reasonable defaults for a first analysis run.
func DefaultMetricsOptions() MetricsOptions {
	return MetricsOptions{
		TopKs:                  []int{1, 5, 10},
		MinDocumentFrequency:   2,
		MaxStopCandidates:      20,
		MinCooccurrence:        2,
		MaxPMIAnomalies:        20,
		CommunityEdgeThreshold: 2,
		CommunityPreviewSize:   5,
		MaxTokenLength:         64,
	}
}

// RunAnalysis executes stages S1-S7 against request, reporting progress to
// sink and honoring cancellation from ctx (spec.md §6). It is the sole
// entry point external callers use.
func RunAnalysis(ctx context.Context, request Request, sink progress.Sink, metricsOpts MetricsOptions) Result {
	jobID := uuid.NewString()
	reporter := progress.NewReporter(sink)
	cancel := progress.FromContext(ctx)

	reporter.Report(progress.StageValidate, 0, "validating request")

	outputDir := request.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(request.InputDir, ".tagmetry-output")
	}
	paths := report.DefaultPaths(outputDir)

	fail := func(err error) Result {
		cleanupPartial(paths)
		reporter.Report(progress.StageFailed, reporter.Best(), err.Error())
		state := StateFailed
		if tagerr.IsCancelled(err) {
			state = StateCancelled
		}
		return Result{
			JobID:      jobID,
			State:      state,
			Outputs:    map[string]string{},
			Error:      err.Error(),
			FinishedAt: time.Now().UTC(),
		}
	}

	if _, err := os.Stat(request.InputDir); err != nil {
		return fail(tagerr.Wrapf(tagerr.KindInputNotFound, "input directory %s does not exist", request.InputDir))
	}

	scanResult, err := scanner.Scan(ctx, scanner.Options{
		Root:         request.InputDir,
		ExcludeGlobs: request.ExcludeGlobs,
		MaxWorkers:   4,
	}, reporter, cancel)
	if err != nil {
		return fail(err)
	}
	scanResult.Summary.OutputPaths = artifactPathMap(paths)

	if cancel.Cancelled() {
		return fail(tagerr.ErrCancelled)
	}

	outputs := map[string]string{}

	if err := report.WriteRecords(paths.Records, scanResult.Records); err != nil {
		return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing dataset.jsonl: %s", err))
	}
	outputs["records"] = paths.Records

	if err := report.WriteSummary(paths.Summary, scanResult.Summary); err != nil {
		return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing summary.json: %s", err))
	}
	outputs["summary"] = paths.Summary

	var metricsReport types.MetricsReport
	var evaluation types.RecommendationEvaluation

	if request.EnableTagMetrics {
		reporter.Report(progress.StageNormalize, 28, "normalizing tags")

		rules := tagnorm.DefaultRules()
		bags := make([][]string, len(scanResult.Records))
		for i, rec := range scanResult.Records {
			raw := tagTokensOf(rec)
			bags[i] = rules.Normalize(raw).NormalizedTokens
		}

		if cancel.Cancelled() {
			return fail(tagerr.ErrCancelled)
		}

		reporter.Report(progress.StageMetrics, 53, "computing tag-health metrics")
		metricsReport = metrics.Evaluate(bags, metrics.Options{
			TopKs:                   metricsOpts.TopKs,
			Target:                  metricsOpts.Target,
			MinDocumentFrequency:    metricsOpts.MinDocumentFrequency,
			MaxStopCandidates:       metricsOpts.MaxStopCandidates,
			MinCooccurrence:         metricsOpts.MinCooccurrence,
			MaxPMIAnomalies:         metricsOpts.MaxPMIAnomalies,
			CommunityEdgeThreshold:  metricsOpts.CommunityEdgeThreshold,
			CommunityPreviewSize:    metricsOpts.CommunityPreviewSize,
			NearDuplicateGroupKeys:  nil,
			MaxTokenLength:          metricsOpts.MaxTokenLength,
		})

		if err := report.WriteMetrics(paths.Metrics, metricsReport); err != nil {
			return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing metrics.json: %s", err))
		}
		outputs["metrics"] = paths.Metrics

		if err := report.WriteMetricsSummary(paths.MetricsSummary, metricsReport); err != nil {
			return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing metrics.md: %s", err))
		}
		outputs["metricsSummary"] = paths.MetricsSummary

		if request.EnableRecommendations {
			reporter.Report(progress.StageRecommend, 61, "evaluating recommendation ruleset")

			var ruleset types.Ruleset
			if request.RulesPath != "" {
				data, err := os.ReadFile(request.RulesPath)
				if err != nil {
					return fail(tagerr.Wrapf(tagerr.KindIoFailure, "reading ruleset: %s", err))
				}
				ruleset, err = recommend.LoadRuleset(data)
				if err != nil {
					return fail(err)
				}
			}

			evaluation = recommend.Evaluate(ruleset.Rules, metricsReport)
			if err := report.WriteRecommendations(paths.Recommendations, evaluation); err != nil {
				return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing recommendations.json: %s", err))
			}
			outputs["recommendations"] = paths.Recommendations
		}
	}

	if request.EnableDuplicateDetection {
		reporter.Report(progress.StageDedupe, 69, "detecting duplicates")

		absPaths := make([]string, len(scanResult.Records))
		for i, rec := range scanResult.Records {
			absPaths[i] = filepath.Join(request.InputDir, filepath.FromSlash(rec.Path))
		}

		duplicateReport, err := dedup.Detect(ctx, absPaths, dedup.DefaultOptions(), cancel)
		if err != nil {
			return fail(err)
		}
		duplicateReport = relativizeDuplicateReport(duplicateReport, request.InputDir)

		if err := report.WriteDuplicates(paths.Duplicates, duplicateReport); err != nil {
			return fail(tagerr.Wrapf(tagerr.KindIoFailure, "writing duplicates.json: %s", err))
		}
		outputs["duplicates"] = paths.Duplicates
	}

	reporter.Report(progress.StageFinalize, 100, "analysis complete")

	return Result{
		JobID:      jobID,
		State:      StateCompleted,
		Outputs:    outputs,
		FinishedAt: time.Now().UTC(),
	}
}

// tagTokensOf extracts the raw tag tokens contributing to the metrics tag
// bag for one image: comma-separated booru tags and style tags. The short
// caption is free text, not a tag list, and does not contribute tokens.
func tagTokensOf(rec types.ImageRecord) []string {
	var tokens []string
	if rec.CaptionSources.BooruTags != nil {
		tokens = append(tokens, splitTags(*rec.CaptionSources.BooruTags)...)
	}
	if rec.CaptionSources.StyleTags != nil {
		tokens = append(tokens, splitTags(*rec.CaptionSources.StyleTags)...)
	}
	return tokens
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func artifactPathMap(paths report.Paths) map[string]string {
	return map[string]string{
		"records":         paths.Records,
		"summary":         paths.Summary,
		"metrics":         paths.Metrics,
		"metricsSummary":  paths.MetricsSummary,
		"recommendations": paths.Recommendations,
		"duplicates":      paths.Duplicates,
	}
}

func relativizeDuplicateReport(dr types.DuplicateReport, root string) types.DuplicateReport {
	rel := func(abs string) string {
		r, err := filepath.Rel(root, abs)
		if err != nil {
			return abs
		}
		return filepath.ToSlash(r)
	}
	for i, g := range dr.ExactGroups {
		for j, p := range g.Paths {
			dr.ExactGroups[i].Paths[j] = rel(p)
		}
	}
	for i, f := range dr.NearFindings {
		dr.NearFindings[i].Left = rel(f.Left)
		dr.NearFindings[i].Right = rel(f.Right)
	}
	for i, g := range dr.NearGroups {
		for j, p := range g.Paths {
			dr.NearGroups[i].Paths[j] = rel(p)
		}
	}
	return dr
}

func cleanupPartial(paths report.Paths) {
	for _, p := range []string{paths.Records, paths.Summary, paths.Metrics, paths.MetricsSummary, paths.Recommendations, paths.Duplicates} {
		os.Remove(p)
	}
}
