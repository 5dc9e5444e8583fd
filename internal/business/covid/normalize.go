package covid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/socrata"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
	"github.com/weiwei-tsao/covid-state-compare/pkg/util"
)

const (
	// CountryUS is the Country_Region value of rows kept for state views.
	CountryUS = "US"
	// NewYorkCity is reported separately by the CDC but already counted under "New York".
	NewYorkCity = "New York City"
)

// NormalizeNationalSnapshot projects raw features to snapshot rows for every country.
// Rows without Last_Update are dropped; a missing region becomes "".
func NormalizeNationalSnapshot(features []arcgis.Feature) ([]model.StateSnapshot, error) {
	out := make([]model.StateSnapshot, 0, len(features))
	dropped := 0
	for i, f := range features {
		a := f.Attributes
		if a.LastUpdate == nil {
			dropped++
			continue
		}
		row := model.StateSnapshot{
			Country:    util.CleanLabel(deref(a.CountryRegion)),
			Region:     util.CleanLabel(deref(a.ProvinceState)),
			LastUpdate: time.UnixMilli(*a.LastUpdate).UTC(),
		}
		counts := []struct {
			field string
			src   *int64
			dst   *int64
		}{
			{"Confirmed", a.Confirmed, &row.Confirmed},
			{"Deaths", a.Deaths, &row.Deaths},
			{"Recovered", a.Recovered, &row.Recovered},
		}
		for _, c := range counts {
			if c.src == nil {
				continue
			}
			if *c.src < 0 {
				return nil, &RowError{
					Source: "arcgis", Index: i, State: row.Region, Field: c.field,
					Value: strconv.FormatInt(*c.src, 10), Err: ErrSchema,
				}
			}
			*c.dst = *c.src
		}
		out = append(out, row)
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("snapshot rows without Last_Update dropped")
	}
	return out, nil
}

// OnlyUSStates narrows snapshot rows to US regions keyed by region name.
func OnlyUSStates(rows []model.StateSnapshot) (map[string]model.StateSnapshot, error) {
	out := make(map[string]model.StateSnapshot)
	for _, r := range rows {
		if r.Country != CountryUS {
			continue
		}
		if _, dup := out[r.Region]; dup {
			return nil, fmt.Errorf("%w: duplicate US region %q", ErrSchema, r.Region)
		}
		out[r.Region] = r
	}
	return out, nil
}

// FirstUSRow returns the first US row in provider order; its Last_Update drives the caption.
func FirstUSRow(rows []model.StateSnapshot) (model.StateSnapshot, bool) {
	for _, r := range rows {
		if r.Country == CountryUS {
			return r, true
		}
	}
	return model.StateSnapshot{}, false
}

// NormalizeAgeGroupDeaths filters and coerces raw CDC rows. Filters apply in order:
// national aggregates, any "Total" state, all-ages groups, numeric coercion, New York City.
// A non-numeric death count fails the whole call with a *RowError.
func NormalizeAgeGroupDeaths(rows []socrata.Row) ([]model.AgeGroupDeathRecord, error) {
	out := make([]model.AgeGroupDeathRecord, 0, len(rows))
	suppressed, cleaned := 0, 0
	for i, r := range rows {
		if util.NeedsCleanup(r.State) || util.NeedsCleanup(r.AgeGroup) {
			cleaned++
		}
		state := util.CleanLabel(r.State)
		ageGroup := util.CleanLabel(r.AgeGroup)

		if state == "United States" || state == "United States Total" {
			continue
		}
		if strings.Contains(state, "Total") {
			continue
		}
		if strings.Contains(strings.ToLower(ageGroup), "all ages") {
			continue
		}

		deaths, present, err := parseDeaths(r.Deaths)
		if err != nil {
			return nil, &RowError{
				Source: "socrata", Index: i, State: state, Field: "covid_19_deaths",
				Value: string(r.Deaths), Err: err,
			}
		}
		if !present {
			suppressed++
		}

		if state == NewYorkCity {
			continue
		}
		out = append(out, model.AgeGroupDeathRecord{State: state, AgeGroup: ageGroup, Deaths: deaths})
	}
	if suppressed > 0 {
		log.Debug().Int("rows", suppressed).Msg("age group rows without a death count counted as zero")
	}
	if cleaned > 0 {
		log.Debug().Int("rows", cleaned).Msg("age group labels normalized")
	}
	return out, nil
}

// parseDeaths reads a count sent either as a JSON number or a numeric string.
// An absent or null value is reported as not present and read as zero.
func parseDeaths(raw json.RawMessage) (float64, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrNonNumericDeaths, err)
		}
	} else {
		text = string(raw)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, ErrNonNumericDeaths
	}
	if v < 0 {
		return 0, false, fmt.Errorf("%w: negative count", ErrNonNumericDeaths)
	}
	return v, true, nil
}

// OrderedStates returns the distinct states of the age table, sorted.
func OrderedStates(records []model.AgeGroupDeathRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.State] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// RecordsForState selects one state's age rows.
func RecordsForState(records []model.AgeGroupDeathRecord, state string) []model.AgeGroupDeathRecord {
	var out []model.AgeGroupDeathRecord
	for _, r := range records {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
