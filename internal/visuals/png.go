package visuals

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

var (
	firstColor  = drawing.ColorFromHex("19D3F3")
	secondColor = drawing.ColorFromHex("ff7f0e")
)

const (
	barWidth   = 24
	barSpacing = 10
	chartPad   = 120
	chartH     = 480
)

// RenderComparisonPNG draws both series as grouped bars, first state on the left of each
// pair, and writes a PNG to w.
func RenderComparisonPNG(w io.Writer, first, second model.AgeBucketSeries) error {
	if len(first.Buckets) == 0 {
		return errors.New("no buckets to draw")
	}
	labels := mergedLabels(first, second)
	a := alignedValues(first, labels)
	b := alignedValues(second, labels)

	maxY := 1.0
	bars := make([]chart.Value, 0, 2*len(labels))
	for i, l := range labels {
		bars = append(bars,
			chart.Value{Label: l, Value: a[i], Style: chart.Style{FillColor: firstColor, StrokeColor: firstColor}},
			chart.Value{Label: " ", Value: b[i], Style: chart.Style{FillColor: secondColor, StrokeColor: secondColor}},
		)
		maxY = math.Max(maxY, math.Max(a[i], b[i]))
	}

	bc := chart.BarChart{
		Title:      fmt.Sprintf("%s (blue) vs %s (orange): deaths by age group", first.State, second.State),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      len(bars)*(barWidth+barSpacing) + chartPad,
		Height:     chartH,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Name:  "Death Count",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxY * 11 / 10)},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render comparison chart: %w", err)
	}
	return nil
}
