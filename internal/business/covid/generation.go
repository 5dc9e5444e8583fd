package covid

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
	"github.com/weiwei-tsao/covid-state-compare/pkg/util"
)

// Generation is one complete, immutable set of normalized tables. A refresh builds a new
// Generation and swaps it in whole; nothing mutates a Generation after BuildGeneration returns.
type Generation struct {
	Snapshots   []model.StateSnapshot // every country, provider order
	US          map[string]model.StateSnapshot
	AgeRecords  []model.AgeGroupDeathRecord
	States      []string // selector options, from the age table
	FetchedAt   time.Time
	FetchedOn   civil.Date
	LastUpdate  time.Time // Last_Update of the first US row
	Fingerprint string
}

// BuildGeneration normalizes both payloads. Any error discards the whole generation.
func BuildGeneration(raw RawPayloads, fetchedAt time.Time, loc *time.Location) (*Generation, error) {
	snapshots, err := NormalizeNationalSnapshot(raw.Features)
	if err != nil {
		return nil, fmt.Errorf("normalize national snapshot: %w", err)
	}
	us, err := OnlyUSStates(snapshots)
	if err != nil {
		return nil, fmt.Errorf("normalize national snapshot: %w", err)
	}
	first, ok := FirstUSRow(snapshots)
	if !ok {
		return nil, fmt.Errorf("%w: national snapshot has no %s rows", ErrSchema, CountryUS)
	}
	ages, err := NormalizeAgeGroupDeaths(raw.AgeRows)
	if err != nil {
		return nil, fmt.Errorf("normalize age group deaths: %w", err)
	}

	return &Generation{
		Snapshots:   snapshots,
		US:          us,
		AgeRecords:  ages,
		States:      OrderedStates(ages),
		FetchedAt:   fetchedAt,
		FetchedOn:   DateIn(fetchedAt, loc),
		LastUpdate:  first.LastUpdate,
		Fingerprint: util.HashTables(snapshots, ages),
	}, nil
}

// Stats returns the row counters recorded for the refresh that built g.
func (g *Generation) Stats() model.RefreshRunStats {
	return model.RefreshRunStats{
		Snapshots:  len(g.Snapshots),
		USStates:   len(g.US),
		AgeRecords: len(g.AgeRecords),
	}
}
