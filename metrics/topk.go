package metrics

import "tagmetry/types"

// computeTopKMass is M5: for each requested K, the cumulative probability
// mass of the K most frequent tags (ties already broken ordinally by
// sortedTags).
func computeTopKMass(sortedTags []string, probs map[string]float64, ks []int) types.TopKMass {
	result := make(types.TopKMass, len(ks))
	for _, k := range ks {
		if k < 0 {
			k = 0
		}
		limit := k
		if limit > len(sortedTags) {
			limit = len(sortedTags)
		}
		var mass float64
		for _, tag := range sortedTags[:limit] {
			mass += probs[tag]
		}
		result[k] = mass
	}
	return result
}
