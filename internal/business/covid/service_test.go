package covid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

func newTestService(t *testing.T, payload RawPayloads) *Service {
	t.Helper()
	clk := &clock{t: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(NewCache(&fakeFetcher{payload: payload}, CacheOptions{Now: clk.now, Location: time.UTC}))
}

func TestServiceCompare(t *testing.T) {
	svc := newTestService(t, samplePayload())

	cmp, err := svc.Compare(context.Background(), "California", "Arizona")
	require.NoError(t, err)

	assert.Equal(t, []model.AgeBucket{
		{Label: "0-4", Deaths: 5},
		{Label: "85+", Deaths: 100},
		{Label: "Unknown", Deaths: 15},
	}, cmp.First.Series.Buckets)
	assert.Equal(t, model.StateSummary{Name: "California", Confirmed: 1000, Deaths: 105, FatalityRatePercent: 10.5}, cmp.First.Summary)

	// Arizona has no age rows: placeholder series, all deaths unknown.
	assert.Equal(t, []model.AgeBucket{
		{Label: "0-4", Deaths: 0},
		{Label: "Unknown", Deaths: 10},
	}, cmp.Second.Series.Buckets)
	assert.Equal(t, 0.0, cmp.Second.Summary.FatalityRatePercent)

	assert.Equal(t, model.StateSummary{Name: "United States", Confirmed: 1500, Deaths: 130, FatalityRatePercent: 8.7}, cmp.National)
	assert.Equal(t, "Sources: Esri & CDC | Last Updated: March 1, 2021", cmp.Caption)
	assert.NotEmpty(t, cmp.Fingerprint)
}

func TestServiceUnknownState(t *testing.T) {
	svc := newTestService(t, samplePayload())

	_, err := svc.Compare(context.Background(), "California", "Atlantis")
	require.ErrorIs(t, err, ErrUnknownState)

	_, err = svc.State(context.Background(), "Italy")
	require.ErrorIs(t, err, ErrUnknownState, "non-US rows are not selectable")
}

func TestServiceZeroConfirmed(t *testing.T) {
	payload := samplePayload()
	payload.Features = append(payload.Features, feature("US", "Empty", 0, 0, 0, 1614556800000))
	svc := newTestService(t, payload)

	_, err := svc.State(context.Background(), "Empty")
	require.ErrorIs(t, err, ErrZeroConfirmed)
}

func TestServiceStatesAndNational(t *testing.T) {
	svc := newTestService(t, samplePayload())

	states, err := svc.States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"California"}, states.States)
	assert.Equal(t, "California", states.DefaultFirst)
	assert.Equal(t, "Arizona", states.DefaultSecond)

	national, err := svc.National(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), national.Summary.Confirmed)
	assert.Contains(t, national.Caption, "March 1, 2021")
}

func TestServiceNoUSRows(t *testing.T) {
	payload := samplePayload()
	payload.Features = []arcgis.Feature{feature("Italy", "", 1, 1, 1, 1614556800000)}
	svc := newTestService(t, payload)

	_, err := svc.National(context.Background())
	require.ErrorIs(t, err, ErrSchema)
}
