package visuals

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

func series(state string, pairs ...any) model.AgeBucketSeries {
	s := model.AgeBucketSeries{State: state}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Buckets = append(s.Buckets, model.AgeBucket{Label: pairs[i].(string), Deaths: pairs[i+1].(float64)})
	}
	return s
}

func TestGenerateComparisonChart(t *testing.T) {
	ca := series("California", "0-4", 5.0, "85+", 100.0, "Unknown", 15.0)
	az := series("Arizona", "0-4", 0.0, "Unknown", 10.0)

	out := GenerateComparisonChart(ca, az)

	assert.True(t, strings.HasPrefix(out, "```mermaid\nxychart-beta\n"))
	assert.Contains(t, out, `title "COVID-19 Deaths by Age Group: California vs Arizona"`)
	assert.Contains(t, out, `x-axis "Age Group" ["0-4", "85+", "Unknown"]`)
	assert.Contains(t, out, "y-axis \"Death Count\" 0 --> 110")
	assert.Contains(t, out, "bar [5, 100, 15]\n")
	assert.Contains(t, out, "bar [0, 0, 10]\n")
	assert.True(t, strings.HasSuffix(out, "```"))
}

func TestGenerateComparisonChartInsertsLabelsBeforeUnknown(t *testing.T) {
	a := series("A", "0-4", 1.0, "Unknown", 0.0)
	b := series("B", "0-4", 2.0, "5-14", 3.0, "Unknown", 4.0)

	out := GenerateComparisonChart(a, b)

	assert.Contains(t, out, `["0-4", "5-14", "Unknown"]`)
	assert.Contains(t, out, "bar [1, 0, 0]\n")
	assert.Contains(t, out, "bar [2, 3, 4]\n")
}

func TestGenerateComparisonChartEmpty(t *testing.T) {
	assert.Empty(t, GenerateComparisonChart(model.AgeBucketSeries{}, model.AgeBucketSeries{}))
}

func TestGenerateSummaryTable(t *testing.T) {
	out := GenerateSummaryTable(model.StateSummary{Name: "California", Confirmed: 1000, Deaths: 105, FatalityRatePercent: 10.5})
	assert.Contains(t, out, "| California | 1000 | 105 | 10.5% |")
}

func TestRenderComparisonPNG(t *testing.T) {
	ca := series("California", "0-4", 5.0, "5-14", 2.0, "85+", 100.0, "Unknown", 15.0)
	az := series("Arizona", "0-4", 0.0, "Unknown", 10.0)

	var buf bytes.Buffer
	require.NoError(t, RenderComparisonPNG(&buf, ca, az))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, chartH, img.Bounds().Dy())
}

func TestRenderComparisonPNGAllZero(t *testing.T) {
	a := series("A", "0-4", 0.0, "Unknown", 0.0)
	b := series("B", "0-4", 0.0, "Unknown", 0.0)

	var buf bytes.Buffer
	require.NoError(t, RenderComparisonPNG(&buf, a, b))
	assert.NotZero(t, buf.Len())
}

func TestRenderComparisonPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderComparisonPNG(&buf, model.AgeBucketSeries{}, model.AgeBucketSeries{}))
}
