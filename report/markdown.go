package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tagmetry/types"
)

// WriteMetricsSummary renders the metrics report as a Markdown document and
// writes it to path (spec.md §4.6).
func WriteMetricsSummary(path string, metrics types.MetricsReport) error {
	return writeFile(path, []byte(renderMetricsSummary(metrics)))
}

func renderMetricsSummary(m types.MetricsReport) string {
	var b strings.Builder

	fmt.Fprintln(&b, "# Tag Health Metrics Summary")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Generated at %s.\n\n", m.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))

	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|---|---|")
	fmt.Fprintf(&b, "| Sample count | %d |\n", m.SampleCount)
	fmt.Fprintf(&b, "| Token count | %d |\n", m.TokenCount)
	fmt.Fprintf(&b, "| Unique tag count | %d |\n", m.UniqueTagCount)
	fmt.Fprintf(&b, "| Entropy | %s |\n", formatFloat(m.Entropy))
	fmt.Fprintf(&b, "| Effective tag count | %s |\n", formatFloat(m.EffectiveTagCount))
	fmt.Fprintf(&b, "| Gini | %s |\n", formatFloat(m.Gini))
	fmt.Fprintf(&b, "| HHI | %s |\n", formatFloat(m.HHI))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M1 Entropy")
	fmt.Fprintf(&b, "%s nats.\n\n", formatFloat(m.Entropy))

	fmt.Fprintln(&b, "## M2 Effective tag count")
	fmt.Fprintf(&b, "%s.\n\n", formatFloat(m.EffectiveTagCount))

	fmt.Fprintln(&b, "## M3 Gini")
	fmt.Fprintf(&b, "%s.\n\n", formatFloat(m.Gini))

	fmt.Fprintln(&b, "## M4 HHI")
	fmt.Fprintf(&b, "%s.\n\n", formatFloat(m.HHI))

	fmt.Fprintln(&b, "## M5 Top-K mass")
	if len(m.TopKMass) == 0 {
		fmt.Fprintln(&b, "No K values requested.")
	} else {
		ks := make([]int, 0, len(m.TopKMass))
		for k := range m.TopKMass {
			ks = append(ks, k)
		}
		sort.Ints(ks)
		fmt.Fprintln(&b, "| K | Mass |")
		fmt.Fprintln(&b, "|---|---|")
		for _, k := range ks {
			fmt.Fprintf(&b, "| %d | %s |\n", k, formatFloat(m.TopKMass[k]))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M6 JSD to target")
	if m.JSDToTarget == nil {
		fmt.Fprintln(&b, "Not computed: no target distribution with a positive total was supplied.")
	} else {
		fmt.Fprintf(&b, "%s bits.\n", formatFloat(*m.JSDToTarget))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M7 Stop-tag candidates")
	if len(m.StopTagCandidates) == 0 {
		fmt.Fprintln(&b, "None.")
	} else {
		for _, c := range m.StopTagCandidates {
			fmt.Fprintf(&b, "- `%s` — document frequency %d, smoothed IDF %s\n", c.Tag, c.DocumentFreq, formatFloat(c.SmoothedIDF))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M8 PMI anomalies")
	if len(m.PMIAnomalies) == 0 {
		fmt.Fprintln(&b, "None.")
	} else {
		for _, a := range m.PMIAnomalies {
			fmt.Fprintf(&b, "- `%s` + `%s` — co-occurrence %d, PMI %s\n", a.TagA, a.TagB, a.Cooccurrence, formatFloat(a.PMI))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M9 Community hint")
	fmt.Fprintf(&b, "Community count %d, modularity hint %s.\n", m.CommunityHint.CommunityCount, formatFloat(m.CommunityHint.ModularityHint))
	for i, preview := range m.CommunityHint.CommunityPreviews {
		fmt.Fprintf(&b, "- Community %d: %s\n", i+1, strings.Join(preview, ", "))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M10 Near-duplicate rate hook")
	if m.NearDuplicateRateHook.Rate == nil {
		fmt.Fprintf(&b, "Not computed: %s\n", m.NearDuplicateRateHook.Note)
	} else {
		fmt.Fprintf(&b, "%s.\n", formatFloat(*m.NearDuplicateRateHook.Rate))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## M11 Token-length overflow rate")
	fmt.Fprintf(&b, "%s.\n", formatFloat(m.TokenLengthOverflowRate))

	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
