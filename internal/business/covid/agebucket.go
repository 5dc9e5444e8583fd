package covid

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

const (
	// MergedInfantLabel replaces the "Under 1" and "1-4" buckets.
	MergedInfantLabel = "0-4"
	// UnknownLabel is the residual bucket appended to every series.
	UnknownLabel = "Unknown"
)

var (
	underOnePattern  = regexp.MustCompile(`(?i)^under 1 years?$`)
	rangePattern     = regexp.MustCompile(`(?i)^(\d+)\s*-\s*(\d+) years?$`)
	openEndedPattern = regexp.MustCompile(`(?i)^(\d+) years? and over$`)
)

// AgeBucketKey is the typed form of a CDC age group label.
type AgeBucketKey struct {
	Lower     int
	Upper     int // inclusive; unused when OpenEnded
	OpenEnded bool
	UnderOne  bool
}

// Label is the display form: "15-24", "85+", or "Under 1".
func (k AgeBucketKey) Label() string {
	switch {
	case k.UnderOne:
		return "Under 1"
	case k.OpenEnded:
		return strconv.Itoa(k.Lower) + "+"
	default:
		return fmt.Sprintf("%d-%d", k.Lower, k.Upper)
	}
}

// mergesIntoInfant reports whether the bucket is folded into "0-4".
func (k AgeBucketKey) mergesIntoInfant() bool {
	return k.UnderOne || (!k.OpenEnded && k.Lower == 1 && k.Upper == 4)
}

// ParseAgeBucket maps "Under 1 year", "N-M years" and "N years and over" to a key.
// Anything else is rejected with ErrUnknownAgeLabel.
func ParseAgeBucket(label string) (AgeBucketKey, error) {
	if underOnePattern.MatchString(label) {
		return AgeBucketKey{Lower: 0, Upper: 0, UnderOne: true}, nil
	}
	if m := rangePattern.FindStringSubmatch(label); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if hi < lo {
			return AgeBucketKey{}, fmt.Errorf("%w: %q", ErrUnknownAgeLabel, label)
		}
		return AgeBucketKey{Lower: lo, Upper: hi}, nil
	}
	if m := openEndedPattern.FindStringSubmatch(label); m != nil {
		lo, _ := strconv.Atoi(m[1])
		return AgeBucketKey{Lower: lo, OpenEnded: true}, nil
	}
	return AgeBucketKey{}, fmt.Errorf("%w: %q", ErrUnknownAgeLabel, label)
}

type bucketTotal struct {
	key    AgeBucketKey
	label  string
	deaths float64
}

// BuildAgeBucketSeries turns one state's age rows into the chart series: the two youngest
// buckets merged into "0-4" (always present), buckets ordered by lower bound, open-ended
// buckets labelled "N+", and a final "Unknown" bucket holding max(0, total - bucketed).
//
// Buckets sharing a lower bound sort widest first, so "0-17" precedes "0-4".
//
// A state without age rows still gets a series: "0-4" at zero followed by Unknown. This is
// two buckets, where the dashboard this replaces padded the empty case to three.
func BuildAgeBucketSeries(state string, records []model.AgeGroupDeathRecord, stateTotalDeaths int64) (model.AgeBucketSeries, error) {
	infant := &bucketTotal{key: AgeBucketKey{Lower: 0, Upper: 4}, label: MergedInfantLabel}
	byLabel := map[string]*bucketTotal{MergedInfantLabel: infant}

	for _, r := range records {
		key, err := ParseAgeBucket(r.AgeGroup)
		if err != nil {
			return model.AgeBucketSeries{}, fmt.Errorf("state %s: %w", state, err)
		}
		if key.mergesIntoInfant() {
			infant.deaths += r.Deaths
			continue
		}
		label := key.Label()
		b, ok := byLabel[label]
		if !ok {
			b = &bucketTotal{key: key, label: label}
			byLabel[label] = b
		}
		b.deaths += r.Deaths
	}

	ordered := make([]*bucketTotal, 0, len(byLabel))
	for _, b := range byLabel {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bucketLess(ordered[i], ordered[j])
	})

	series := model.AgeBucketSeries{State: state, Buckets: make([]model.AgeBucket, 0, len(ordered)+1)}
	var sum float64
	for _, b := range ordered {
		series.Buckets = append(series.Buckets, model.AgeBucket{Label: b.label, Deaths: b.deaths})
		sum += b.deaths
	}

	unknown := float64(stateTotalDeaths) - sum
	if unknown < 0 {
		unknown = 0
	}
	series.Buckets = append(series.Buckets, model.AgeBucket{Label: UnknownLabel, Deaths: unknown})
	return series, nil
}

// bucketLess orders by lower bound; on a shared lower bound closed ranges come before
// open-ended ones, wider ranges first ("0-17" before "0-4"), then by label.
func bucketLess(a, b *bucketTotal) bool {
	if a.key.Lower != b.key.Lower {
		return a.key.Lower < b.key.Lower
	}
	if a.key.OpenEnded != b.key.OpenEnded {
		return !a.key.OpenEnded
	}
	if a.key.Upper != b.key.Upper {
		return a.key.Upper > b.key.Upper
	}
	return a.label < b.label
}

// BucketedDeaths sums a series excluding the Unknown residual.
func BucketedDeaths(series model.AgeBucketSeries) float64 {
	var sum float64
	for _, b := range series.Buckets {
		if b.Label == UnknownLabel {
			continue
		}
		sum += b.Deaths
	}
	return sum
}
