package visuals

import (
	"fmt"
	"math"
	"strings"

	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// GenerateComparisonChart creates a Mermaid xychart-beta with one bar series per state.
// The x axis follows the first series' label order, with labels only the second series
// has inserted before Unknown. A bucket missing from either series is drawn as zero.
func GenerateComparisonChart(first, second model.AgeBucketSeries) string {
	if len(first.Buckets) == 0 {
		return ""
	}

	labels := mergedLabels(first, second)
	a := alignedValues(first, labels)
	b := alignedValues(second, labels)

	maxY := 1.0
	for _, v := range append(append([]float64{}, a...), b...) {
		if v > maxY {
			maxY = v
		}
	}

	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"COVID-19 Deaths by Age Group: %s vs %s\"\n", first.State, second.State))
	sb.WriteString(fmt.Sprintf("    x-axis \"Age Group\" [%s]\n", strings.Join(quoted, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Death Count\" 0 --> %d\n", int(math.Ceil(maxY*11/10))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinValues(a)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinValues(b)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSummaryTable renders summaries as a Markdown table.
func GenerateSummaryTable(summaries ...model.StateSummary) string {
	var sb strings.Builder
	sb.WriteString("| | Confirmed | Deaths | Fatality Rate |\n")
	sb.WriteString("|---|---:|---:|---:|\n")
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.0f | %.1f%% |\n", s.Name, s.Confirmed, s.Deaths, s.FatalityRatePercent))
	}
	return sb.String()
}

// mergedLabels keeps the first series' order and inserts any label only the second has
// before its Unknown bucket.
func mergedLabels(first, second model.AgeBucketSeries) []string {
	labels := first.Labels()
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		seen[l] = true
	}
	var extra []string
	for _, l := range second.Labels() {
		if !seen[l] {
			extra = append(extra, l)
			seen[l] = true
		}
	}
	if len(extra) == 0 {
		return labels
	}
	tail := labels[len(labels)-1]
	out := append(append(labels[:len(labels)-1:len(labels)-1], extra...), tail)
	return out
}

func alignedValues(series model.AgeBucketSeries, labels []string) []float64 {
	byLabel := make(map[string]float64, len(series.Buckets))
	for _, b := range series.Buckets {
		byLabel[b.Label] = b.Deaths
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = byLabel[l]
	}
	return out
}

func joinValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.0f", v)
	}
	return strings.Join(parts, ", ")
}
