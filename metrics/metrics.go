// Package metrics implements the tag-health metrics evaluator (S3) of
// spec.md §4.3: eleven statistics (M1-M11) computed from the bag of
// normalized tag lists produced by the tag normalizer.
package metrics

import (
	"time"

	"tagmetry/types"
)

// Options configures the metrics evaluator (spec.md §4.3's "options" list).
type Options struct {
	// TopKs are the K values M5 computes cumulative mass for.
	TopKs []int
	// Target is the optional prior distribution M6 compares against, keyed
	// by tag name. Nil or non-positive-sum disables M6.
	Target map[string]float64
	// MinDocumentFrequency is the minimum sample count a tag must appear in
	// to be considered for M7.
	MinDocumentFrequency int
	// MaxStopCandidates caps the M7 output length; non-positive means
	// unlimited.
	MaxStopCandidates int
	// MinCooccurrence is the minimum pair document co-occurrence for M8.
	MinCooccurrence int
	// MaxPMIAnomalies caps the M8 output length; non-positive means
	// unlimited.
	MaxPMIAnomalies int
	// CommunityEdgeThreshold is the minimum co-occurrence weight for an
	// edge to survive into the M9 graph.
	CommunityEdgeThreshold float64
	// CommunityPreviewSize caps the tags previewed per M9 component;
	// non-positive means unlimited (every member of the component).
	CommunityPreviewSize int
	// NearDuplicateGroupKeys is the optional per-sample grouping key
	// sequence for M10. An empty string at index i means "no key" for
	// sample i. A length mismatch against the sample count disables M10.
	NearDuplicateGroupKeys []string
	// MaxTokenLength is the M11 overflow threshold, in characters.
	MaxTokenLength int
}

// Evaluate computes M1-M11 over bags, where each bag is one sample's
// (possibly repeating) normalized tag tokens.
func Evaluate(bags [][]string, opts Options) types.MetricsReport {
	freq, tokenCount := buildFrequency(bags)
	df := buildDocumentFrequency(bags)
	sampleCount := len(bags)
	uniqueTagCount := len(freq)

	probs := buildProbabilities(freq, tokenCount)
	entropy := computeEntropy(probs)
	effective := computeEffectiveTagCount(entropy)
	gini := computeGini(probs)
	hhi := computeHHI(probs)

	sortedTags := sortTagsByProbabilityDesc(probs)
	topK := computeTopKMass(sortedTags, probs, opts.TopKs)

	jsd := computeJSD(probs, opts.Target)

	stopCandidates := computeStopTagCandidates(df, sampleCount, opts.MinDocumentFrequency, opts.MaxStopCandidates)

	cooc := buildCooccurrence(bags)
	pmiAnomalies := computePMIAnomalies(cooc, df, sampleCount, opts.MinCooccurrence, opts.MaxPMIAnomalies)
	community := computeCommunityHint(cooc, opts.CommunityEdgeThreshold, opts.CommunityPreviewSize)

	nearDupHook := computeNearDuplicateRateHook(opts.NearDuplicateGroupKeys, sampleCount)
	overflow := computeOverflowRate(bags, tokenCount, opts.MaxTokenLength)

	return types.MetricsReport{
		SampleCount:             sampleCount,
		TokenCount:              tokenCount,
		UniqueTagCount:          uniqueTagCount,
		Entropy:                 entropy,
		EffectiveTagCount:       effective,
		Gini:                    gini,
		HHI:                     hhi,
		TopKMass:                topK,
		JSDToTarget:             jsd,
		StopTagCandidates:       stopCandidates,
		PMIAnomalies:            pmiAnomalies,
		CommunityHint:           community,
		NearDuplicateRateHook:   nearDupHook,
		TokenLengthOverflowRate: overflow,
		GeneratedAt:             time.Now().UTC(),
	}
}
