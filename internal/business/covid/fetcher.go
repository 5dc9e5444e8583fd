package covid

import (
	"context"
	"fmt"

	"github.com/weiwei-tsao/covid-state-compare/internal/platform/arcgis"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/socrata"
)

// SnapshotSource abstracts the national totals provider so refreshes can be tested without network calls.
type SnapshotSource interface {
	FetchNationalSnapshot(ctx context.Context) ([]arcgis.Feature, error)
}

// AgeGroupSource abstracts the age-group deaths provider.
type AgeGroupSource interface {
	FetchAgeGroupDeaths(ctx context.Context) ([]socrata.Row, error)
}

// Fetcher pulls both raw payloads. Neither call is retried; any failure aborts the refresh.
type Fetcher struct {
	snapshots SnapshotSource
	ages      AgeGroupSource
}

func NewFetcher(snapshots SnapshotSource, ages AgeGroupSource) *Fetcher {
	return &Fetcher{snapshots: snapshots, ages: ages}
}

// RawPayloads is the unnormalized output of one fetch.
type RawPayloads struct {
	Features []arcgis.Feature
	AgeRows  []socrata.Row
}

// FetchAll retrieves the national snapshot and then the age-group deaths.
func (f *Fetcher) FetchAll(ctx context.Context) (RawPayloads, error) {
	features, err := f.snapshots.FetchNationalSnapshot(ctx)
	if err != nil {
		return RawPayloads{}, fmt.Errorf("%w: national snapshot: %w", ErrFetch, err)
	}
	rows, err := f.ages.FetchAgeGroupDeaths(ctx)
	if err != nil {
		return RawPayloads{}, fmt.Errorf("%w: age group deaths: %w", ErrFetch, err)
	}
	return RawPayloads{Features: features, AgeRows: rows}, nil
}
