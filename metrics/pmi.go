package metrics

import (
	"math"
	"sort"

	"tagmetry/types"
)

// pair is an unordered tag pair stored with A < B ordinally, so it can be
// used directly as a deterministic map key.
type pair struct{ A, B string }

// buildCooccurrence counts, per sample, deduplicated tag pairs, summing the
// count across samples. Each sample's tokens are deduplicated and sorted
// ordinally before pairing, matching spec.md §4.3 M8's construction, and
// the same map backs both M8 (PMI) and M9 (community detection).
func buildCooccurrence(bags [][]string) map[pair]int {
	cooc := make(map[pair]int)
	for _, bag := range bags {
		uniq := dedupeSorted(bag)
		for i := 0; i < len(uniq); i++ {
			for j := i + 1; j < len(uniq); j++ {
				cooc[pair{uniq[i], uniq[j]}]++
			}
		}
	}
	return cooc
}

func dedupeSorted(bag []string) []string {
	seen := make(map[string]struct{}, len(bag))
	out := make([]string, 0, len(bag))
	for _, tok := range bag {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// computePMIAnomalies is M8: pointwise mutual information over
// document-frequency-derived probabilities for pairs with co-occurrence
// count >= minCooccurrence, ordered by descending PMI, then descending
// count, then ordinal tag pair, truncated to max (non-positive means
// unlimited).
func computePMIAnomalies(cooc map[pair]int, df map[string]int, sampleCount, minCooccurrence, max int) []types.PMIAnomaly {
	if sampleCount <= 0 {
		return []types.PMIAnomaly{}
	}

	anomalies := make([]types.PMIAnomaly, 0)
	n := float64(sampleCount)
	for p, count := range cooc {
		if count < minCooccurrence {
			continue
		}
		pxy := float64(count) / n
		px := float64(df[p.A]) / n
		py := float64(df[p.B]) / n
		if px <= 0 || py <= 0 || pxy <= 0 {
			continue
		}
		pmi := math.Log2(pxy / (px * py))
		anomalies = append(anomalies, types.PMIAnomaly{
			TagA:         p.A,
			TagB:         p.B,
			Cooccurrence: count,
			PMI:          pmi,
		})
	}

	sort.Slice(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]
		if a.PMI != b.PMI {
			return a.PMI > b.PMI
		}
		if a.Cooccurrence != b.Cooccurrence {
			return a.Cooccurrence > b.Cooccurrence
		}
		if a.TagA != b.TagA {
			return a.TagA < b.TagA
		}
		return a.TagB < b.TagB
	})

	if max > 0 && len(anomalies) > max {
		anomalies = anomalies[:max]
	}
	return anomalies
}
