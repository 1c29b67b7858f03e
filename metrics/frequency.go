package metrics

import "sort"

// buildFrequency counts every token occurrence across all bags (a
// multiset), returning the global frequency map and the total token count.
func buildFrequency(bags [][]string) (map[string]int, int) {
	freq := make(map[string]int)
	total := 0
	for _, bag := range bags {
		for _, tok := range bag {
			freq[tok]++
			total++
		}
	}
	return freq, total
}

// buildDocumentFrequency counts, per tag, the number of samples (bags) that
// contain it at least once.
func buildDocumentFrequency(bags [][]string) map[string]int {
	df := make(map[string]int)
	for _, bag := range bags {
		seen := make(map[string]struct{}, len(bag))
		for _, tok := range bag {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	return df
}

// buildProbabilities converts a frequency map into a probability map over
// the same keys. An empty or zero-total input yields an empty map.
func buildProbabilities(freq map[string]int, total int) map[string]float64 {
	probs := make(map[string]float64, len(freq))
	if total <= 0 {
		return probs
	}
	for tag, count := range freq {
		probs[tag] = float64(count) / float64(total)
	}
	return probs
}

// sortTagsByProbabilityDesc returns tag names ordered by descending
// probability, ties broken by ascending ordinal tag name.
func sortTagsByProbabilityDesc(probs map[string]float64) []string {
	tags := make([]string, 0, len(probs))
	for tag := range probs {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if probs[tags[i]] != probs[tags[j]] {
			return probs[tags[i]] > probs[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags
}
