package metrics

import (
	"math"
	"sort"

	"tagmetry/types"
)

// computeStopTagCandidates is M7: tags with document frequency >= minDF,
// ranked by ascending smoothed IDF, then descending document frequency,
// then ordinal tag name, truncated to max (non-positive max means
// unlimited).
func computeStopTagCandidates(df map[string]int, sampleCount, minDF, max int) []types.StopTagCandidate {
	candidates := make([]types.StopTagCandidate, 0, len(df))
	for tag, freq := range df {
		if freq < minDF {
			continue
		}
		idf := math.Log(float64(sampleCount+1)/float64(freq+1)) + 1
		candidates = append(candidates, types.StopTagCandidate{
			Tag:          tag,
			DocumentFreq: freq,
			SmoothedIDF:  idf,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.SmoothedIDF != b.SmoothedIDF {
			return a.SmoothedIDF < b.SmoothedIDF
		}
		if a.DocumentFreq != b.DocumentFreq {
			return a.DocumentFreq > b.DocumentFreq
		}
		return a.Tag < b.Tag
	})

	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}
