// Package tagnorm implements the deterministic tag-normalization pipeline
// of spec.md §4.2 (S2): case-fold, delimiter-normalize, alias-map, and
// stop-filter each token, recording a four-event audit trail per token.
package tagnorm

import (
	"encoding/json"
	"io"
	"sort"

	"tagmetry/tagerr"
	"tagmetry/types"
)

// Rules is the compiled form of types.TagNormalizationRules: delimiters are
// pre-sorted into matching order, and aliases/stop-tags are pre-normalized
// through case-fold + delimiter-normalization exactly as spec.md §4.2
// requires ("keys and values were normalized through steps 1+2 at load").
type Rules struct {
	canonical  string
	delimiters []string
	aliases    map[string]string
	stopTags   map[string]struct{}
}

// DefaultRules returns the zero-configuration ruleset: canonical delimiter
// " ", no source delimiters, no aliases, no stop tags.
func DefaultRules() *Rules {
	return &Rules{
		canonical:  " ",
		delimiters: nil,
		aliases:    map[string]string{},
		stopTags:   map[string]struct{}{},
	}
}

// Compile builds a Rules from the raw JSON-shaped configuration, applying
// defaults for missing fields and pre-normalizing aliases and stop tags.
func Compile(raw types.TagNormalizationRules) *Rules {
	canonical := raw.CanonicalDelimiter
	if canonical == "" {
		canonical = " "
	}

	delims := append([]string(nil), raw.Delimiters...)
	sortDelimiters(delims)

	r := &Rules{
		canonical:  canonical,
		delimiters: delims,
		aliases:    make(map[string]string, len(raw.Aliases)),
		stopTags:   make(map[string]struct{}, len(raw.StopTags)),
	}

	// Aliases and stop tags are normalized through CaseFold +
	// DelimiterNormalization only (steps 1+2), matching the load-time
	// pre-normalization the alias/stop lookups depend on at match time.
	for k, v := range raw.Aliases {
		nk := r.foldAndDelimit(k)
		nv := r.foldAndDelimit(v)
		r.aliases[nk] = nv
	}
	for _, s := range raw.StopTags {
		r.stopTags[r.foldAndDelimit(s)] = struct{}{}
	}

	return r
}

// LoadRules parses a JSON document into a compiled Rules, defaulting any
// missing field. It fails with tagerr.ErrInvalidConfig on malformed JSON.
func LoadRules(r io.Reader) (*Rules, error) {
	var raw types.TagNormalizationRules
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, tagerr.Wrapf(tagerr.KindInvalidConfig, "parsing normalization rules: %v", err)
	}
	return Compile(raw), nil
}

// sortDelimiters orders delimiters by descending length, then ordinal byte
// comparison, matching spec.md §4.2's deterministic overlap-resolution
// order.
func sortDelimiters(delims []string) {
	sort.Slice(delims, func(i, j int) bool {
		if len(delims[i]) != len(delims[j]) {
			return len(delims[i]) > len(delims[j])
		}
		return delims[i] < delims[j]
	})
}
