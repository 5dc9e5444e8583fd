package covid

import (
	"fmt"
	"math"

	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// NationalName labels the aggregate summary.
const NationalName = "United States"

// Summarize builds the confirmed/deaths/fatality-rate triple for one state.
// The rate is deaths/confirmed as a percentage rounded to one decimal.
func Summarize(name string, confirmed int64, bucketedDeaths float64) (model.StateSummary, error) {
	if confirmed <= 0 {
		return model.StateSummary{}, fmt.Errorf("%w: %s has %d confirmed", ErrZeroConfirmed, name, confirmed)
	}
	return model.StateSummary{
		Name:                name,
		Confirmed:           confirmed,
		Deaths:              bucketedDeaths,
		FatalityRatePercent: RoundTo(bucketedDeaths/float64(confirmed)*100, 1),
	}, nil
}

// SummarizeNational sums confirmed and deaths over every US row before taking the ratio.
func SummarizeNational(us map[string]model.StateSnapshot) (model.StateSummary, error) {
	var confirmed, deaths int64
	for _, s := range us {
		confirmed += s.Confirmed
		deaths += s.Deaths
	}
	return Summarize(NationalName, confirmed, float64(deaths))
}

// RoundTo rounds half away from zero to the given number of decimal places.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
