package metrics

import "math"

// computeJSD is M6: the base-2 Jensen-Shannon divergence between the
// observed distribution p and a renormalized target. Returns nil when
// target is empty or sums to <= 0.
func computeJSD(p map[string]float64, target map[string]float64) *float64 {
	if len(target) == 0 {
		return nil
	}

	var targetSum float64
	for _, v := range target {
		targetSum += v
	}
	if targetSum <= 0 {
		return nil
	}

	q := make(map[string]float64, len(target))
	for k, v := range target {
		q[k] = v / targetSum
	}

	keys := make(map[string]struct{}, len(p)+len(q))
	for k := range p {
		keys[k] = struct{}{}
	}
	for k := range q {
		keys[k] = struct{}{}
	}

	var jsd float64
	for k := range keys {
		pi := p[k]
		qi := q[k]
		mi := (pi + qi) / 2
		if mi <= 0 {
			continue
		}
		if pi > 0 {
			jsd += 0.5 * pi * log2(pi/mi)
		}
		if qi > 0 {
			jsd += 0.5 * qi * log2(qi/mi)
		}
	}

	return &jsd
}

func log2(x float64) float64 {
	return math.Log2(x)
}
