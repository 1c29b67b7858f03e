package recommend

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"tagmetry/types"
)

const equalTolerance = 1e-12

// Evaluate runs every rule's conjunction of conditions against report,
// returning one RecommendationMatch per rule whose conditions all matched.
// Rules are evaluated in ordinal order by id (spec.md §4.4).
func Evaluate(rules []types.RecommendationRule, report types.MetricsReport) types.RecommendationEvaluation {
	ordered := append([]types.RecommendationRule(nil), rules...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	eval := types.RecommendationEvaluation{
		Matches:     []types.RecommendationMatch{},
		GeneratedAt: time.Now().UTC(),
	}

	for _, rule := range ordered {
		evaluated := make([]types.EvaluatedCondition, 0, len(rule.Conditions))
		allMatch := true
		for _, cond := range rule.Conditions {
			ec := evaluateCondition(cond, report)
			evaluated = append(evaluated, ec)
			if !ec.Matched {
				allMatch = false
			}
		}
		if !allMatch {
			continue
		}
		eval.Matches = append(eval.Matches, types.RecommendationMatch{
			RuleID:              rule.ID,
			Severity:            rule.Severity,
			Description:         rule.Description,
			EvaluatedConditions: evaluated,
			FailureModes:        append([]string(nil), rule.LikelyFailureModes...),
			Actions:             append([]string(nil), rule.Actions...),
		})
	}

	return eval
}

func evaluateCondition(cond types.RuleCondition, report types.MetricsReport) types.EvaluatedCondition {
	actual, ok := resolveSignal(report, cond.Signal)
	ec := types.EvaluatedCondition{
		Signal:   cond.Signal,
		Operator: cond.Operator,
		Expected: cond.Value,
	}
	if !ok {
		ec.Matched = false
		ec.Explanation = "Signal not found."
		return ec
	}
	ec.Actual = &actual

	matched, explanation := applyOperator(cond.Operator, actual, cond.Value)
	ec.Matched = matched
	ec.Explanation = explanation
	return ec
}

func applyOperator(op types.ConditionOperator, actual, expected float64) (bool, string) {
	switch op {
	case types.OpGreaterThan:
		m := actual > expected
		return m, fmt.Sprintf("%.6g > %.6g: %v", actual, expected, m)
	case types.OpGreaterThanOrEqual:
		m := actual >= expected
		return m, fmt.Sprintf("%.6g >= %.6g: %v", actual, expected, m)
	case types.OpLessThan:
		m := actual < expected
		return m, fmt.Sprintf("%.6g < %.6g: %v", actual, expected, m)
	case types.OpLessThanOrEqual:
		m := actual <= expected
		return m, fmt.Sprintf("%.6g <= %.6g: %v", actual, expected, m)
	case types.OpEqual:
		m := math.Abs(actual-expected) <= equalTolerance
		return m, fmt.Sprintf("%.6g == %.6g (tol %.0e): %v", actual, expected, equalTolerance, m)
	case types.OpNotEqual:
		m := math.Abs(actual-expected) > equalTolerance
		return m, fmt.Sprintf("%.6g != %.6g (tol %.0e): %v", actual, expected, equalTolerance, m)
	default:
		return false, "Unknown operator."
	}
}

// resolveSignal resolves a named signal to a numeric scalar from report
// (spec.md §4.4's signal table).
func resolveSignal(report types.MetricsReport, signal string) (float64, bool) {
	switch signal {
	case "sampleCount":
		return float64(report.SampleCount), true
	case "tokenCount":
		return float64(report.TokenCount), true
	case "uniqueTagCount":
		return float64(report.UniqueTagCount), true
	case "entropy":
		return report.Entropy, true
	case "effectiveTagCount":
		return report.EffectiveTagCount, true
	case "gini":
		return report.Gini, true
	case "hhi":
		return report.HHI, true
	case "jsdToTarget":
		if report.JSDToTarget == nil {
			return 0, false
		}
		return *report.JSDToTarget, true
	case "stopTagCandidatesCount":
		return float64(len(report.StopTagCandidates)), true
	case "pmiAnomaliesCount":
		return float64(len(report.PMIAnomalies)), true
	case "communityCount":
		return float64(report.CommunityHint.CommunityCount), true
	case "modularityHint":
		return report.CommunityHint.ModularityHint, true
	case "nearDuplicateRate":
		if report.NearDuplicateRateHook.Rate == nil {
			return 0, false
		}
		return *report.NearDuplicateRateHook.Rate, true
	case "tokenLengthOverflowRate":
		return report.TokenLengthOverflowRate, true
	default:
		if k, ok := strings.CutPrefix(signal, "topKMass:"); ok {
			kInt, err := strconv.Atoi(k)
			if err != nil {
				return 0, false
			}
			v, ok := report.TopKMass[kInt]
			return v, ok
		}
		return 0, false
	}
}
