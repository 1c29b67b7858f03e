// Package recommend implements the recommendation engine (S4) and the
// recommendation ruleset loader (S7) of spec.md §4.4 and §4.7.
package recommend

import (
	"bytes"
	"embed"
	"encoding/json"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"tagmetry/tagerr"
	"tagmetry/types"
)

//go:embed ruleset.schema.json
var schemaFS embed.FS

const schemaURL = "mem://tagmetry/ruleset.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func rulesetSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("ruleset.schema.json")
		if err != nil {
			compileErr = err
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// LoadRuleset parses a recommendation ruleset from JSON or YAML bytes,
// validates the shape against the ruleset schema, and returns the typed
// rules. Rules with a missing or blank id are dropped; missing list fields
// default to empty (spec.md §4.7).
func LoadRuleset(data []byte) (types.Ruleset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.Ruleset{Rules: []types.RecommendationRule{}}, nil
	}

	var instance any
	jsonErr := json.Unmarshal(trimmed, &instance)
	if jsonErr != nil {
		instance = nil
		if yamlErr := yaml.Unmarshal(trimmed, &instance); yamlErr != nil {
			return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset,
				"could not parse as JSON (%v) or YAML (%v)", jsonErr, yamlErr)
		}
	}

	// Normalize through a JSON round-trip so YAML-decoded Go-native
	// numeric types line up with what the schema validator and the
	// subsequent struct decode both expect.
	canonical, err := json.Marshal(instance)
	if err != nil {
		return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset, "re-encoding ruleset: %v", err)
	}
	instance = nil
	if err := json.Unmarshal(canonical, &instance); err != nil {
		return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset, "re-decoding ruleset: %v", err)
	}

	schema, err := rulesetSchema()
	if err != nil {
		return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset, "compiling ruleset schema: %v", err)
	}
	if err := schema.Validate(instance); err != nil {
		return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset, "ruleset does not match schema: %v", err)
	}

	var rs types.Ruleset
	if err := json.Unmarshal(canonical, &rs); err != nil {
		return types.Ruleset{}, tagerr.Wrapf(tagerr.KindInvalidRuleset, "decoding ruleset: %v", err)
	}

	kept := rs.Rules[:0]
	for _, rule := range rs.Rules {
		if strings.TrimSpace(rule.ID) == "" {
			continue
		}
		if rule.Conditions == nil {
			rule.Conditions = []types.RuleCondition{}
		}
		if rule.LikelyFailureModes == nil {
			rule.LikelyFailureModes = []string{}
		}
		if rule.Actions == nil {
			rule.Actions = []string{}
		}
		kept = append(kept, rule)
	}
	rs.Rules = kept

	return rs, nil
}
