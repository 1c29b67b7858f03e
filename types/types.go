// Package types holds the value types shared across the analysis pipeline:
// the per-image record, the summary index, the tag-health metrics report,
// the recommendation evaluation, and the duplicate-detection report.
package types

import "time"

// CaptionSources holds the raw text pulled from an image's sidecar files.
// A nil pointer means the source was absent for that image.
type CaptionSources struct {
	BooruTags     *string `json:"booruTags,omitempty"`
	ShortCaption  *string `json:"shortCaption,omitempty"`
	StyleTags     *string `json:"styleTags,omitempty"`
}

// ImageRecord is the immutable per-image record produced by the scanner.
type ImageRecord struct {
	Path            string         `json:"path"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	MD5             string         `json:"md5"`
	SHA256          string         `json:"sha256"`
	CaptionSources  CaptionSources `json:"captionSources"`
	HasBooruTags    bool           `json:"hasBooruTags"`
	HasShortCaption bool           `json:"hasShortCaption"`
	HasStyleTags    bool           `json:"hasStyleTags"`
}

// ExtensionCounts maps a lowercase file extension (without the dot) to the
// number of images observed with that extension.
type ExtensionCounts map[string]int

// SummaryIndex is the dataset-wide summary emitted alongside the record
// stream.
type SummaryIndex struct {
	DatasetPath         string          `json:"datasetPath"`
	OutputPaths         map[string]string `json:"outputPaths"`
	TotalImages         int             `json:"totalImages"`
	WithBooruTags       int             `json:"withBooruTags"`
	WithShortCaption    int             `json:"withShortCaption"`
	WithStyleTags       int             `json:"withStyleTags"`
	TotalPixels         int64           `json:"totalPixels"`
	ExtensionHistogram  ExtensionCounts `json:"extensionHistogram"`
}

// AuditEventKind names one of the four fixed normalization steps.
type AuditEventKind string

const (
	AuditCaseFold                AuditEventKind = "CaseFold"
	AuditDelimiterNormalization  AuditEventKind = "DelimiterNormalization"
	AuditAliasMapping            AuditEventKind = "AliasMapping"
	AuditStopTagFiltering        AuditEventKind = "StopTagFiltering"
)

// AuditEvent records one normalization step applied to a token.
type AuditEvent struct {
	Kind    AuditEventKind `json:"kind"`
	Before  string         `json:"before"`
	After   string         `json:"after"`
	Message string         `json:"message"`
}

// NormalizationTokenResult is the outcome of running one raw token through
// the normalization pipeline.
type NormalizationTokenResult struct {
	Original   string       `json:"original"`
	Normalized *string      `json:"normalized"`
	IsFiltered bool         `json:"isFiltered"`
	Audit      []AuditEvent `json:"audit"`
}

// NormalizationResult is the outcome of normalizing a full token sequence.
type NormalizationResult struct {
	Tokens           []NormalizationTokenResult `json:"tokens"`
	NormalizedTokens []string                   `json:"normalizedTokens"`
}

// TagNormalizationRules configures the normalizer (spec.md §4.2 and §3).
type TagNormalizationRules struct {
	CanonicalDelimiter string            `json:"canonicalDelimiter"`
	Delimiters         []string          `json:"delimiters"`
	Aliases            map[string]string `json:"aliases"`
	StopTags           []string          `json:"stopTags"`
}

// TopKMass maps a requested K to the cumulative probability mass of the K
// most frequent tags.
type TopKMass map[int]float64

// StopTagCandidate is one entry in the M7 stop-tag candidate list.
type StopTagCandidate struct {
	Tag             string  `json:"tag"`
	DocumentFreq    int     `json:"documentFrequency"`
	SmoothedIDF     float64 `json:"smoothedIdf"`
}

// PMIAnomaly is one entry in the M8 pointwise-mutual-information list.
type PMIAnomaly struct {
	TagA        string  `json:"tagA"`
	TagB        string  `json:"tagB"`
	Cooccurrence int    `json:"cooccurrence"`
	PMI         float64 `json:"pmi"`
}

// CommunityHint is the M9 co-occurrence community-detection summary.
type CommunityHint struct {
	CommunityCount   int        `json:"communityCount"`
	ModularityHint   float64    `json:"modularityHint"`
	CommunityPreviews [][]string `json:"communityPreviews"`
}

// NearDuplicateRateHook is the M10 hook: either a computed rate, or an
// absent rate accompanied by an explanatory note.
type NearDuplicateRateHook struct {
	Rate *float64 `json:"rate"`
	Note string   `json:"note,omitempty"`
}

// MetricsReport carries M1-M11 (spec.md §3, §4.3).
type MetricsReport struct {
	SampleCount               int                    `json:"sampleCount"`
	TokenCount                int                    `json:"tokenCount"`
	UniqueTagCount            int                    `json:"uniqueTagCount"`
	Entropy                   float64                `json:"entropy"`
	EffectiveTagCount         float64                `json:"effectiveTagCount"`
	Gini                      float64                `json:"gini"`
	HHI                       float64                `json:"hhi"`
	TopKMass                  TopKMass               `json:"topKMass"`
	JSDToTarget               *float64               `json:"jsdToTarget"`
	StopTagCandidates         []StopTagCandidate     `json:"stopTagCandidates"`
	PMIAnomalies              []PMIAnomaly           `json:"pmiAnomalies"`
	CommunityHint             CommunityHint          `json:"communityHint"`
	NearDuplicateRateHook     NearDuplicateRateHook  `json:"nearDuplicateRateHook"`
	TokenLengthOverflowRate   float64                `json:"tokenLengthOverflowRate"`
	GeneratedAt               time.Time              `json:"generatedAt"`
}

// Severity is a recommendation rule's severity level.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// ConditionOperator is a comparison operator used in a rule condition.
type ConditionOperator string

const (
	OpGreaterThan        ConditionOperator = "GreaterThan"
	OpGreaterThanOrEqual ConditionOperator = "GreaterThanOrEqual"
	OpLessThan           ConditionOperator = "LessThan"
	OpLessThanOrEqual    ConditionOperator = "LessThanOrEqual"
	OpEqual              ConditionOperator = "Equal"
	OpNotEqual           ConditionOperator = "NotEqual"
)

// RuleCondition is one `(signal, operator, value)` clause of a rule.
type RuleCondition struct {
	Signal   string            `json:"signal" yaml:"signal"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    float64           `json:"value" yaml:"value"`
}

// RecommendationRule is a single ruleset entry (spec.md §3, §4.4).
type RecommendationRule struct {
	ID                 string          `json:"id" yaml:"id"`
	Description        string          `json:"description" yaml:"description"`
	Severity           Severity        `json:"severity" yaml:"severity"`
	Conditions         []RuleCondition `json:"conditions" yaml:"conditions"`
	LikelyFailureModes []string        `json:"likelyFailureModes" yaml:"likelyFailureModes"`
	Actions            []string        `json:"actions" yaml:"actions"`
}

// Ruleset is the top-level envelope parsed from JSON or YAML (spec.md §6, §4.7).
type Ruleset struct {
	Rules []RecommendationRule `json:"rules" yaml:"rules"`
}

// EvaluatedCondition is one condition's evaluation outcome against a
// concrete metrics report.
type EvaluatedCondition struct {
	Signal      string            `json:"signal"`
	Operator    ConditionOperator `json:"operator"`
	Expected    float64           `json:"expected"`
	Actual      *float64          `json:"actual"`
	Matched     bool              `json:"matched"`
	Explanation string            `json:"explanation"`
}

// RecommendationMatch is one rule's evaluation outcome.
type RecommendationMatch struct {
	RuleID              string               `json:"ruleId"`
	Severity            Severity             `json:"severity"`
	Description         string               `json:"description"`
	EvaluatedConditions []EvaluatedCondition `json:"evaluatedConditions"`
	FailureModes        []string             `json:"failureModes"`
	Actions             []string             `json:"actions"`
}

// RecommendationEvaluation is the full output of the recommendation engine.
type RecommendationEvaluation struct {
	Matches     []RecommendationMatch `json:"matches"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

// DuplicateBand classifies a near-duplicate finding.
type DuplicateBand string

const (
	BandLikely DuplicateBand = "Likely"
	BandMaybe  DuplicateBand = "Maybe"
)

// ExactDuplicateGroup is a set of byte-identical images.
type ExactDuplicateGroup struct {
	GroupID string   `json:"groupId"`
	SHA256  string   `json:"sha256"`
	Paths   []string `json:"paths"`
}

// NearDuplicateFinding is one pairwise near-duplicate comparison result.
type NearDuplicateFinding struct {
	Left       string        `json:"left"`
	Right      string        `json:"right"`
	Distance   int           `json:"hammingDistance"`
	Band       DuplicateBand `json:"band"`
	Similarity float64       `json:"similarity"`
}

// NearDuplicateGroup is a connected component under Likely-band edges.
type NearDuplicateGroup struct {
	GroupID       string   `json:"groupId"`
	Paths         []string `json:"paths"`
	AggregateScore float64 `json:"aggregateScore"`
	LikelyPairs   int      `json:"likelyPairCount"`
	MaybePairs    int      `json:"maybePairCount"`
}

// DuplicateReport is the full output of the duplicate detector.
type DuplicateReport struct {
	TotalFiles   int                    `json:"totalFiles"`
	ExactGroups  []ExactDuplicateGroup  `json:"exactGroups"`
	NearFindings []NearDuplicateFinding `json:"nearFindings"`
	NearGroups   []NearDuplicateGroup   `json:"nearGroups"`
}
