package tagnorm

import (
	"testing"

	"tagmetry/types"
)

func TestNormalizeScenario3(t *testing.T) {
	rules := Compile(types.TagNormalizationRules{
		CanonicalDelimiter: " ",
		Delimiters:         []string{"_", "-", "/"},
		Aliases: map[string]string{
			"sci fi": "science fiction",
			"bw":     "black and white",
		},
		StopTags: []string{"meta", "discard me"},
	})

	result := rules.Normalize([]string{"SCI_FI", "bW", "meta", "safe-tag"})

	want := []string{"science fiction", "black and white", "safe tag"}
	if len(result.NormalizedTokens) != len(want) {
		t.Fatalf("got %v, want %v", result.NormalizedTokens, want)
	}
	for i, w := range want {
		if result.NormalizedTokens[i] != w {
			t.Errorf("index %d: got %q, want %q", i, result.NormalizedTokens[i], w)
		}
	}

	if len(result.Tokens) != 4 {
		t.Fatalf("expected 4 token results, got %d", len(result.Tokens))
	}
	meta := result.Tokens[2]
	if !meta.IsFiltered {
		t.Fatalf("expected 'meta' to be filtered")
	}
	if meta.Normalized != nil {
		t.Fatalf("filtered token must have absent Normalized, got %q", *meta.Normalized)
	}
	last := meta.Audit[len(meta.Audit)-1]
	if last.Kind != types.AuditStopTagFiltering {
		t.Fatalf("expected final audit event to be StopTagFiltering, got %s", last.Kind)
	}

	for _, tr := range result.Tokens {
		if len(tr.Audit) != 4 {
			t.Fatalf("expected 4 audit events, got %d for %q", len(tr.Audit), tr.Original)
		}
		wantKinds := []types.AuditEventKind{
			types.AuditCaseFold, types.AuditDelimiterNormalization,
			types.AuditAliasMapping, types.AuditStopTagFiltering,
		}
		for i, k := range wantKinds {
			if tr.Audit[i].Kind != k {
				t.Errorf("token %q: audit[%d].Kind = %s, want %s", tr.Original, i, tr.Audit[i].Kind, k)
			}
		}
	}
}

func TestNormalizeScenario4(t *testing.T) {
	rules := Compile(types.TagNormalizationRules{
		CanonicalDelimiter: "-",
		Delimiters:         []string{"--", "_"},
	})

	result := rules.Normalize([]string{"A----B", "A__B"})

	if len(result.NormalizedTokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(result.NormalizedTokens))
	}
	for i, tok := range result.NormalizedTokens {
		if tok != "a-b" {
			t.Errorf("token %d: got %q, want %q", i, tok, "a-b")
		}
	}
	for _, tr := range result.Tokens {
		if len(tr.Audit) != 4 {
			t.Errorf("token %q: expected 4 audit events, got %d", tr.Original, len(tr.Audit))
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rules := Compile(types.TagNormalizationRules{
		CanonicalDelimiter: " ",
		Delimiters:         []string{"_", "-"},
		Aliases:            map[string]string{"sci fi": "science fiction"},
	})

	first := rules.Normalize([]string{"Sci-Fi"})
	if len(first.NormalizedTokens) != 1 {
		t.Fatalf("expected one normalized token")
	}
	normalized := first.NormalizedTokens[0]

	second := rules.Normalize([]string{normalized})
	if second.NormalizedTokens[0] != normalized {
		t.Fatalf("normalizing a normalized token changed it: %q -> %q", normalized, second.NormalizedTokens[0])
	}
	tr := second.Tokens[0]
	if tr.Audit[1].Message != "No change." {
		t.Errorf("expected DelimiterNormalization to report no change on round trip, got %q", tr.Audit[1].Message)
	}
	if tr.Audit[2].Message != "No change." {
		t.Errorf("expected AliasMapping to report no change on round trip, got %q", tr.Audit[2].Message)
	}
}

func TestDefaultRulesPassthrough(t *testing.T) {
	rules := DefaultRules()
	result := rules.Normalize([]string{"Plain Tag"})
	if result.NormalizedTokens[0] != "plain tag" {
		t.Fatalf("got %q, want %q", result.NormalizedTokens[0], "plain tag")
	}
}
