package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/socrata"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

type stubFetcher struct{}

func strp(s string) *string { return &s }
func intp(n int64) *int64   { return &n }

func (stubFetcher) FetchAll(context.Context) (covid.RawPayloads, error) {
	snap := func(region string, confirmed, deaths int64) arcgis.Feature {
		return arcgis.Feature{Attributes: arcgis.Attributes{
			CountryRegion: strp("US"),
			ProvinceState: strp(region),
			Confirmed:     intp(confirmed),
			Deaths:        intp(deaths),
			Recovered:     intp(0),
			LastUpdate:    intp(1614556800000),
		}}
	}
	age := func(state, group, deaths string) socrata.Row {
		return socrata.Row{State: state, AgeGroup: group, Deaths: json.RawMessage(deaths)}
	}
	return covid.RawPayloads{
		Features: []arcgis.Feature{snap("California", 1000, 120), snap("Arizona", 500, 10)},
		AgeRows: []socrata.Row{
			age("California", "Under 1 year", `"2"`),
			age("California", "1-4 years", `"3"`),
			age("California", "85 years and over", `"100"`),
			age("Arizona", "85 years and over", `"8"`),
		},
	}, nil
}

type stubRuns struct{}

func (stubRuns) ListRuns(context.Context, int) ([]model.RefreshRun, error) {
	return []model.RefreshRun{{
		RunID:     "RUN_1",
		Trigger:   covid.TriggerManual,
		Status:    covid.RunStatusSuccess,
		Stats:     model.RefreshRunStats{USStates: 2, AgeRecords: 4},
		StartedAt: time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC),
	}}, nil
}

func run(t *testing.T, runs RunLister, args ...string) (string, error) {
	t.Helper()
	svc := covid.NewService(covid.NewCache(stubFetcher{}, covid.CacheOptions{Location: time.UTC}))
	root := NewRootCmd(&Deps{Service: svc, Runs: runs})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompareJSON(t *testing.T) {
	out, err := run(t, nil, "compare", "California", "Arizona")
	require.NoError(t, err)

	var cmp covid.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	assert.Equal(t, "California", cmp.First.Summary.Name)
	assert.Equal(t, 10.5, cmp.First.Summary.FatalityRatePercent)
	assert.Equal(t, []string{"0-4", "85+", "Unknown"}, cmp.Second.Series.Labels())
	assert.Equal(t, "Sources: Esri & CDC | Last Updated: March 1, 2021", cmp.Caption)
}

func TestCompareMermaidDefaults(t *testing.T) {
	out, err := run(t, nil, "compare", "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "California vs Arizona")
	assert.Contains(t, out, "| Arizona | 500 | 8 | 1.6% |")
}

func TestComparePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compare.png")
	out, err := run(t, nil, "compare", "-f", "png", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestCompareErrors(t *testing.T) {
	_, err := run(t, nil, "compare", "California", "Atlantis")
	assert.ErrorIs(t, err, covid.ErrUnknownState)

	_, err = run(t, nil, "compare", "-f", "png")
	assert.ErrorContains(t, err, "--out")

	_, err = run(t, nil, "compare", "-f", "csv")
	assert.ErrorContains(t, err, "unknown format")
}

func TestStates(t *testing.T) {
	out, err := run(t, nil, "states")
	require.NoError(t, err)
	assert.Equal(t, "Arizona\nCalifornia\n", out)
}

func TestNational(t *testing.T) {
	out, err := run(t, nil, "national")
	require.NoError(t, err)
	var view covid.NationalView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, int64(1500), view.Summary.Confirmed)
	assert.Equal(t, 8.7, view.Summary.FatalityRatePercent)
}

func TestRuns(t *testing.T) {
	_, err := run(t, nil, "runs")
	assert.ErrorContains(t, err, "FIREBASE_PROJECT_ID")

	out, err := run(t, stubRuns{}, "runs", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN_1")
	assert.Contains(t, out, "2021-03-01T09:00:00Z")
}
