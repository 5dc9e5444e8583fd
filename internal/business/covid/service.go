package covid

import (
	"context"
	"fmt"

	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// Default dropdown selections.
const (
	DefaultFirstState  = "California"
	DefaultSecondState = "Arizona"
)

// Service answers dashboard queries from the cached generation, refreshing it first when stale.
type Service struct {
	cache *Cache
}

func NewService(cache *Cache) *Service {
	return &Service{cache: cache}
}

// StateView is everything shown for one selected state.
type StateView struct {
	Series      model.AgeBucketSeries `json:"series"`
	Summary     model.StateSummary    `json:"summary"`
	Fingerprint string                `json:"-"`
}

// NationalView is the national summary and the caption.
type NationalView struct {
	Summary     model.StateSummary `json:"summary"`
	Caption     string             `json:"caption"`
	Fingerprint string             `json:"-"`
}

// Comparison is the full dashboard payload for two selected states.
type Comparison struct {
	First       StateView          `json:"first"`
	Second      StateView          `json:"second"`
	National    model.StateSummary `json:"national"`
	Caption     string             `json:"caption"`
	Fingerprint string             `json:"-"`
}

// StatesView lists the selectable states.
type StatesView struct {
	States        []string `json:"states"`
	DefaultFirst  string   `json:"defaultFirst"`
	DefaultSecond string   `json:"defaultSecond"`
	Fingerprint   string   `json:"-"`
}

// Compare builds both state views, the national summary and the caption from one generation.
func (s *Service) Compare(ctx context.Context, first, second string) (Comparison, error) {
	g, err := s.cache.Ensure(ctx)
	if err != nil {
		return Comparison{}, err
	}
	a, err := stateView(g, first)
	if err != nil {
		return Comparison{}, err
	}
	b, err := stateView(g, second)
	if err != nil {
		return Comparison{}, err
	}
	national, err := SummarizeNational(g.US)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		First:       a,
		Second:      b,
		National:    national,
		Caption:     Caption(g.LastUpdate, s.cache.Location()),
		Fingerprint: g.Fingerprint,
	}, nil
}

// State builds one state's view.
func (s *Service) State(ctx context.Context, name string) (StateView, error) {
	g, err := s.cache.Ensure(ctx)
	if err != nil {
		return StateView{}, err
	}
	return stateView(g, name)
}

// National returns the national summary and caption.
func (s *Service) National(ctx context.Context) (NationalView, error) {
	g, err := s.cache.Ensure(ctx)
	if err != nil {
		return NationalView{}, err
	}
	summary, err := SummarizeNational(g.US)
	if err != nil {
		return NationalView{}, err
	}
	return NationalView{
		Summary:     summary,
		Caption:     Caption(g.LastUpdate, s.cache.Location()),
		Fingerprint: g.Fingerprint,
	}, nil
}

// States lists the selectable states in order.
func (s *Service) States(ctx context.Context) (StatesView, error) {
	g, err := s.cache.Ensure(ctx)
	if err != nil {
		return StatesView{}, err
	}
	return StatesView{
		States:        append([]string(nil), g.States...),
		DefaultFirst:  DefaultFirstState,
		DefaultSecond: DefaultSecondState,
		Fingerprint:   g.Fingerprint,
	}, nil
}

// Refresh forces a refetch regardless of date.
func (s *Service) Refresh(ctx context.Context) (*Generation, error) {
	return s.cache.Refresh(ctx, TriggerManual)
}

func stateView(g *Generation, name string) (StateView, error) {
	snap, ok := g.US[name]
	if !ok {
		return StateView{}, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	series, err := BuildAgeBucketSeries(name, RecordsForState(g.AgeRecords, name), snap.Deaths)
	if err != nil {
		return StateView{}, err
	}
	summary, err := Summarize(name, snap.Confirmed, BucketedDeaths(series))
	if err != nil {
		return StateView{}, err
	}
	return StateView{Series: series, Summary: summary, Fingerprint: g.Fingerprint}, nil
}
