package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"tagmetry/progress"
	"tagmetry/tagerr"
	"tagmetry/types"
)

// Options configures a scan (spec.md §4.1).
type Options struct {
	Root         string
	ExcludeGlobs []string
	MaxWorkers   int
}

// Result is the S1 output: the canonical-order record stream and the
// dataset-wide summary index.
type Result struct {
	Records []types.ImageRecord
	Summary types.SummaryIndex
}

// Scan walks opts.Root, computes per-image records in canonical enumeration
// order, and builds the accompanying summary index (spec.md §4.1).
func Scan(ctx context.Context, opts Options, reporter *progress.Reporter, cancel progress.CancelToken) (Result, error) {
	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return Result{}, tagerr.Wrapf(tagerr.KindInputNotFound, "dataset root %s does not exist", opts.Root)
	}

	paths, err := discover(opts.Root, opts.ExcludeGlobs)
	if err != nil {
		return Result{}, tagerr.Wrapf(tagerr.KindIoFailure, "enumerating dataset root: %s", err)
	}

	if reporter != nil {
		reporter.Report(progress.StageScan, 0, fmt.Sprintf("discovered %d candidate files", len(paths)))
	}

	records := make([]types.ImageRecord, len(paths))
	warnings := make([]string, len(paths))

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = 1
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return tagerr.ErrCancelled
			default:
			}
			if cancel != nil && cancel.Cancelled() {
				return tagerr.ErrCancelled
			}

			rec, warning, err := buildRecord(opts.Root, path)
			if err != nil {
				return err
			}
			records[i] = rec
			warnings[i] = warning
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if tagerr.IsCancelled(err) {
			return Result{}, tagerr.ErrCancelled
		}
		return Result{}, err
	}

	if reporter != nil {
		for _, w := range warnings {
			if w != "" {
				reporter.Report(progress.StageScan, 0, w)
			}
		}
	}

	summary := buildSummary(opts.Root, records)

	if reporter != nil {
		reporter.Report(progress.StageScan, 18, fmt.Sprintf("scanned %d images", len(records)))
	}

	return Result{Records: records, Summary: summary}, nil
}

// buildRecord computes one ImageRecord. Per-image sidecar or dimension
// failures are tolerated as absent values with a warning message
// (spec.md §7 propagation policy); a file that cannot be opened or fully
// read is fatal, since the digests and dimensions it should have
// contributed can never be recovered.
func buildRecord(root, path string) (types.ImageRecord, string, error) {
	rel, err := relativeSlash(root, path)
	if err != nil {
		return types.ImageRecord{}, "", tagerr.Wrapf(tagerr.KindIoFailure, "relativizing %s: %s", path, err)
	}

	hashed, err := hashAndMeasure(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ImageRecord{}, "", tagerr.Wrapf(tagerr.KindImageFileMissing, "%s: %s", rel, err)
		}
		return types.ImageRecord{}, "", tagerr.Wrapf(tagerr.KindIoFailure, "%s: %s", rel, err)
	}

	var warning string
	if !hashed.DimensionsOK {
		warning = fmt.Sprintf("%s: image dimensions could not be read; recorded as absent", rel)
	}

	sources := resolveSidecars(path)

	rec := types.ImageRecord{
		Path:            rel,
		Width:           hashed.Width,
		Height:          hashed.Height,
		MD5:             hashed.MD5,
		SHA256:          hashed.SHA256,
		CaptionSources:  sources,
		HasBooruTags:    sources.BooruTags != nil,
		HasShortCaption: sources.ShortCaption != nil,
		HasStyleTags:    sources.StyleTags != nil,
	}
	return rec, warning, nil
}

func buildSummary(root string, records []types.ImageRecord) types.SummaryIndex {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	summary := types.SummaryIndex{
		DatasetPath:        abs,
		OutputPaths:        map[string]string{},
		TotalImages:        len(records),
		ExtensionHistogram: types.ExtensionCounts{},
	}

	for _, rec := range records {
		if rec.HasBooruTags {
			summary.WithBooruTags++
		}
		if rec.HasShortCaption {
			summary.WithShortCaption++
		}
		if rec.HasStyleTags {
			summary.WithStyleTags++
		}
		summary.TotalPixels += int64(rec.Width) * int64(rec.Height)

		ext := extensionOf(rec.Path)
		if ext != "" {
			summary.ExtensionHistogram[ext]++
		}
	}

	return summary
}

// extensionOf returns the lowercase extension (without the dot) of a
// slash-normalized relative path.
func extensionOf(relPath string) string {
	idx := strings.LastIndexByte(relPath, '.')
	if idx < 0 || idx == len(relPath)-1 {
		return ""
	}
	return strings.ToLower(relPath[idx+1:])
}
