package metrics

import "tagmetry/types"

// computeNearDuplicateRateHook is M10: if keys has one entry per sample,
// each sample belongs to a "unit" — either its own singleton (empty key) or
// the group of samples sharing its non-empty key value. The rate is the
// fraction of samples in excess of one representative per unit, i.e.
// (sampleCount - unitCount) / sampleCount. Otherwise the rate is absent
// with an explanatory note.
func computeNearDuplicateRateHook(keys []string, sampleCount int) types.NearDuplicateRateHook {
	if len(keys) != sampleCount {
		return types.NearDuplicateRateHook{
			Rate: nil,
			Note: "near-duplicate grouping keys were not provided or their length did not match the sample count",
		}
	}
	if sampleCount == 0 {
		zero := 0.0
		return types.NearDuplicateRateHook{Rate: &zero}
	}

	groupSize := make(map[string]int)
	units := 0
	for _, k := range keys {
		if k == "" {
			units++
			continue
		}
		if groupSize[k] == 0 {
			units++
		}
		groupSize[k]++
	}

	rate := float64(sampleCount-units) / float64(sampleCount)
	return types.NearDuplicateRateHook{Rate: &rate}
}
