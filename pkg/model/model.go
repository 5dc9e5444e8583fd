package model

import "time"

// StateSnapshot is one row of the national totals feed: a country, or a state within it.
type StateSnapshot struct {
	Country    string    `json:"country" firestore:"country"`
	Region     string    `json:"region" firestore:"region"`
	Confirmed  int64     `json:"confirmed" firestore:"confirmed"`
	Deaths     int64     `json:"deaths" firestore:"deaths"`
	Recovered  int64     `json:"recovered" firestore:"recovered"`
	LastUpdate time.Time `json:"lastUpdate" firestore:"lastUpdate"`
}

// AgeGroupDeathRecord is one (state, age group) row of the CDC deaths dataset.
type AgeGroupDeathRecord struct {
	State    string  `json:"state" firestore:"state"`
	AgeGroup string  `json:"ageGroup" firestore:"ageGroup"` // raw label, e.g. "1-4 years"
	Deaths   float64 `json:"deaths" firestore:"deaths"`
}

// AgeBucket is a display bucket of an age series.
type AgeBucket struct {
	Label  string  `json:"label" firestore:"label"`
	Deaths float64 `json:"deaths" firestore:"deaths"`
}

// AgeBucketSeries is the per-state chart series. The last bucket is always "Unknown".
type AgeBucketSeries struct {
	State   string      `json:"state" firestore:"state"`
	Buckets []AgeBucket `json:"buckets" firestore:"buckets"`
}

// Labels returns the x values of the series.
func (s AgeBucketSeries) Labels() []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Label
	}
	return out
}

// Values returns the y values of the series.
func (s AgeBucketSeries) Values() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Deaths
	}
	return out
}

// StateSummary is the confirmed/deaths/fatality-rate triple shown for a state or the nation.
type StateSummary struct {
	Name                string  `json:"name" firestore:"name"`
	Confirmed           int64   `json:"confirmed" firestore:"confirmed"`
	Deaths              float64 `json:"deaths" firestore:"deaths"`
	FatalityRatePercent float64 `json:"fatalityRatePercent" firestore:"fatalityRatePercent"`
}

// RefreshRunStats stores row counters for a refresh.
type RefreshRunStats struct {
	Snapshots  int `json:"snapshots,omitempty" firestore:"snapshots,omitempty"`
	USStates   int `json:"usStates,omitempty" firestore:"usStates,omitempty"`
	AgeRecords int `json:"ageRecords,omitempty" firestore:"ageRecords,omitempty"`
}

// RefreshRun tracks the lifecycle of one fetch-and-normalize pass.
type RefreshRun struct {
	RunID       string          `json:"runId,omitempty" firestore:"runId,omitempty"`
	Trigger     string          `json:"trigger,omitempty" firestore:"trigger,omitempty"` // "daily", "manual" or "startup"
	Status      string          `json:"status,omitempty" firestore:"status,omitempty"`
	Stats       RefreshRunStats `json:"stats,omitempty" firestore:"stats,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty" firestore:"fingerprint,omitempty"`
	Error       string          `json:"error,omitempty" firestore:"error,omitempty"`
	StartedAt   time.Time       `json:"startedAt,omitempty" firestore:"startedAt,omitempty"`
	FinishedAt  time.Time       `json:"finishedAt,omitempty" firestore:"finishedAt,omitempty"`
}
