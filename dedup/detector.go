package dedup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/sync/errgroup"

	"tagmetry/progress"
	"tagmetry/tagerr"
	"tagmetry/types"
)

// Options configures duplicate detection (spec.md §4.5).
type Options struct {
	LikelyThreshold int
	MaybeThreshold  int
	MaxWorkers      int
}

// DefaultOptions returns the thresholds named in spec.md §4.5: a Hamming
// distance of at most 8 bits is Likely, at most 16 is Maybe, and anything
// beyond that is dropped from the report.
func DefaultOptions() Options {
	return Options{LikelyThreshold: 8, MaybeThreshold: 16, MaxWorkers: 4}
}

// Detect fingerprints every path, groups byte-identical files by SHA-256,
// and scores every remaining pair for near-duplication (spec.md §4.5).
// Paths are canonically ordered on input and every result is re-derived
// deterministically from that order, so the report is stable across runs.
func Detect(ctx context.Context, paths []string, opts Options, cancel progress.CancelToken) (types.DuplicateReport, error) {
	ordered := append([]string(nil), paths...)
	sort.Strings(ordered)

	fingerprints, err := fingerprintAll(ctx, ordered, opts, cancel)
	if err != nil {
		return types.DuplicateReport{}, err
	}

	exactGroups := groupExact(fingerprints)
	findings := scoreNearDuplicates(fingerprints, opts)
	nearGroups := groupNear(fingerprints, findings, opts)

	return types.DuplicateReport{
		TotalFiles:   len(fingerprints),
		ExactGroups:  exactGroups,
		NearFindings: findings,
		NearGroups:   nearGroups,
	}, nil
}

func fingerprintAll(ctx context.Context, paths []string, opts Options, cancel progress.CancelToken) ([]Fingerprint, error) {
	results := make([]Fingerprint, len(paths))

	group, gctx := errgroup.WithContext(ctx)
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
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
			fp, err := ComputeFingerprint(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("%w: %s", tagerr.ErrImageFileMissing, err.Error())
				}
				return fmt.Errorf("%w: %s", tagerr.ErrIoFailure, err.Error())
			}
			results[i] = fp
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// groupExact partitions fingerprints by SHA-256 and reports every group of
// two or more byte-identical files. A fingerprint that lands in an exact
// group is still eligible for near-duplicate scoring against fingerprints
// outside its group (spec.md §4.5 excludes only pairs already in the same
// exact group, not every member of one).
func groupExact(fingerprints []Fingerprint) []types.ExactDuplicateGroup {
	bySHA := make(map[string][]Fingerprint)
	for _, fp := range fingerprints {
		bySHA[fp.SHA256] = append(bySHA[fp.SHA256], fp)
	}

	var groups []types.ExactDuplicateGroup

	shas := make([]string, 0, len(bySHA))
	for sha := range bySHA {
		shas = append(shas, sha)
	}
	sort.Strings(shas)

	for _, sha := range shas {
		members := bySHA[sha]
		if len(members) < 2 {
			continue
		}
		paths := make([]string, 0, len(members))
		for _, m := range members {
			paths = append(paths, m.Path)
		}
		sort.Strings(paths)
		groups = append(groups, types.ExactDuplicateGroup{SHA256: sha, Paths: paths})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Paths) != len(groups[j].Paths) {
			return len(groups[i].Paths) > len(groups[j].Paths)
		}
		return groups[i].SHA256 < groups[j].SHA256
	})
	for i := range groups {
		groups[i].GroupID = fmt.Sprintf("exact-%d", i+1)
	}

	if groups == nil {
		groups = []types.ExactDuplicateGroup{}
	}
	return groups
}

// scoreNearDuplicates evaluates every pair once, ordinally by (i, j) with
// i < j, skipping pairs already accounted for by an exact-duplicate group
// (identical SHA-256), and reports only pairs within the Maybe threshold.
func scoreNearDuplicates(fingerprints []Fingerprint, opts Options) []types.NearDuplicateFinding {
	findings := make([]types.NearDuplicateFinding, 0)
	for i := 0; i < len(fingerprints); i++ {
		for j := i + 1; j < len(fingerprints); j++ {
			left, right := fingerprints[i], fingerprints[j]
			if left.SHA256 == right.SHA256 {
				continue
			}
			distance := hammingDistance(left.PHash, right.PHash)

			var band types.DuplicateBand
			switch {
			case distance <= opts.LikelyThreshold:
				band = types.BandLikely
			case distance <= opts.MaybeThreshold:
				band = types.BandMaybe
			default:
				continue
			}

			findings = append(findings, types.NearDuplicateFinding{
				Left:       left.Path,
				Right:      right.Path,
				Distance:   distance,
				Band:       band,
				Similarity: 1 - float64(distance)/64,
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Band != b.Band {
			return a.Band == types.BandLikely
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		return a.Right < b.Right
	})

	return findings
}

// groupNear connects fingerprints whose pair was scored Likely, via
// union-find, and reports every resulting component with two or more
// members.
func groupNear(fingerprints []Fingerprint, findings []types.NearDuplicateFinding, opts Options) []types.NearDuplicateGroup {
	index := make(map[string]int, len(fingerprints))
	for i, fp := range fingerprints {
		index[fp.Path] = i
	}

	uf := newUnionFind(len(fingerprints))
	for _, f := range findings {
		if f.Band != types.BandLikely {
			continue
		}
		uf.union(index[f.Left], index[f.Right])
	}

	members := make(map[int][]string)
	for _, fp := range fingerprints {
		root := uf.find(index[fp.Path])
		members[root] = append(members[root], fp.Path)
	}

	pairScore := make(map[[2]string]types.NearDuplicateFinding, len(findings))
	for _, f := range findings {
		pairScore[[2]string{f.Left, f.Right}] = f
	}

	var groups []types.NearDuplicateGroup
	for _, paths := range members {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)

		var sum float64
		var pairs int
		var likely, maybe int
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				f, ok := pairScore[[2]string{paths[i], paths[j]}]
				if !ok {
					continue
				}
				sum += f.Similarity
				pairs++
				if f.Band == types.BandLikely {
					likely++
				} else {
					maybe++
				}
			}
		}

		aggregate := 1 - float64(opts.LikelyThreshold)/64
		if pairs > 0 {
			aggregate = sum / float64(pairs)
		}

		groups = append(groups, types.NearDuplicateGroup{
			Paths:          paths,
			AggregateScore: aggregate,
			LikelyPairs:    likely,
			MaybePairs:     maybe,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Paths) != len(groups[j].Paths) {
			return len(groups[i].Paths) > len(groups[j].Paths)
		}
		return groups[i].Paths[0] < groups[j].Paths[0]
	})
	for i := range groups {
		groups[i].GroupID = fmt.Sprintf("near-%d", i+1)
	}

	if groups == nil {
		groups = []types.NearDuplicateGroup{}
	}
	return groups
}
