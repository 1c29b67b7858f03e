package tagnorm

import (
	"fmt"
	"strings"

	"tagmetry/types"
)

// Normalize runs every token in tokens through the four-step pipeline in
// order, returning a NormalizationResult whose NormalizedTokens is the
// concatenation of non-filtered results in input order (spec.md §3's
// invariant). A nil tokens slice is treated as an empty sequence and yields
// an empty result; no error is reported for it. Individual empty/blank
// tokens are tolerated and treated as empty strings.
func (r *Rules) Normalize(tokens []string) types.NormalizationResult {
	result := types.NormalizationResult{
		Tokens:           make([]types.NormalizationTokenResult, 0, len(tokens)),
		NormalizedTokens: make([]string, 0, len(tokens)),
	}

	for _, tok := range tokens {
		tr := r.normalizeOne(tok)
		result.Tokens = append(result.Tokens, tr)
		if !tr.IsFiltered && tr.Normalized != nil {
			result.NormalizedTokens = append(result.NormalizedTokens, *tr.Normalized)
		}
	}

	return result
}

func (r *Rules) normalizeOne(original string) types.NormalizationTokenResult {
	audit := make([]types.AuditEvent, 0, 4)

	// Step 1: CaseFold.
	folded := strings.ToLower(original)
	audit = append(audit, auditEvent(types.AuditCaseFold, original, folded))

	// Step 2: DelimiterNormalization.
	delimited := r.delimiterNormalize(folded)
	audit = append(audit, auditEvent(types.AuditDelimiterNormalization, folded, delimited))

	// Step 3: AliasMapping.
	mapped := delimited
	if target, ok := r.aliases[delimited]; ok {
		mapped = target
	}
	audit = append(audit, auditEvent(types.AuditAliasMapping, delimited, mapped))

	// Step 4: StopTagFiltering.
	if _, stopped := r.stopTags[mapped]; stopped {
		audit = append(audit, types.AuditEvent{
			Kind:    types.AuditStopTagFiltering,
			Before:  mapped,
			After:   mapped,
			Message: "Filtered by stop-tag rule.",
		})
		return types.NormalizationTokenResult{
			Original:   original,
			Normalized: nil,
			IsFiltered: true,
			Audit:      audit,
		}
	}

	audit = append(audit, auditEvent(types.AuditStopTagFiltering, mapped, mapped))
	final := mapped
	return types.NormalizationTokenResult{
		Original:   original,
		Normalized: &final,
		IsFiltered: false,
		Audit:      audit,
	}
}

// foldAndDelimit applies steps 1+2 only, used to pre-normalize alias and
// stop-tag configuration at load time.
func (r *Rules) foldAndDelimit(s string) string {
	return r.delimiterNormalize(strings.ToLower(s))
}

// delimiterNormalize replaces every configured delimiter with the canonical
// delimiter, iterating passes over the full (pre-sorted) delimiter list
// until a full pass makes no further change, then collapses runs of the
// canonical delimiter and trims leading/trailing occurrences.
func (r *Rules) delimiterNormalize(s string) string {
	for {
		changed := false
		for _, d := range r.delimiters {
			if d == "" || d == r.canonical {
				continue
			}
			if strings.Contains(s, d) {
				s = strings.ReplaceAll(s, d, r.canonical)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	if r.canonical != "" {
		double := r.canonical + r.canonical
		for strings.Contains(s, double) {
			s = strings.ReplaceAll(s, double, r.canonical)
		}
		for strings.HasPrefix(s, r.canonical) {
			s = s[len(r.canonical):]
		}
		for strings.HasSuffix(s, r.canonical) {
			s = s[:len(s)-len(r.canonical)]
		}
	}

	return s
}

func auditEvent(kind types.AuditEventKind, before, after string) types.AuditEvent {
	msg := "No change."
	if before != after {
		msg = fmt.Sprintf("Transformed '%s' to '%s'.", before, after)
	}
	return types.AuditEvent{Kind: kind, Before: before, After: after, Message: msg}
}
