package covid

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// PayloadFetcher retrieves both raw payloads for a refresh.
type PayloadFetcher interface {
	FetchAll(ctx context.Context) (RawPayloads, error)
}

// RefreshObserver receives the outcome of every refresh, e.g. for metrics.
type RefreshObserver interface {
	ObserveRefresh(trigger string, err error, elapsed time.Duration, g *Generation)
}

// CacheOptions configures a Cache. Zero values select the wall clock, time.Local,
// no run history and no observer.
type CacheOptions struct {
	Now      func() time.Time
	Location *time.Location
	Recorder RunRecorder
	Observer RefreshObserver
}

// Cache owns the current Generation and replaces it at most once per calendar day.
// Readers always see either the old or the new generation in full. Concurrent callers
// that find the cache stale share a single in-flight refresh.
type Cache struct {
	fetcher  PayloadFetcher
	now      func() time.Time
	loc      *time.Location
	recorder RunRecorder
	observer RefreshObserver

	current atomic.Pointer[Generation]
	group   singleflight.Group
}

func NewCache(fetcher PayloadFetcher, opts CacheOptions) *Cache {
	c := &Cache{
		fetcher:  fetcher,
		now:      opts.Now,
		loc:      opts.Location,
		recorder: opts.Recorder,
		observer: opts.Observer,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.recorder == nil {
		c.recorder = NopRecorder{}
	}
	return c
}

// Current returns the generation being served, or nil before the first refresh.
func (c *Cache) Current() *Generation {
	return c.current.Load()
}

// Ensure returns a generation fetched today, refreshing first if needed.
// When the refresh fails the error is returned and the previous generation stays in place.
func (c *Cache) Ensure(ctx context.Context) (*Generation, error) {
	g := c.current.Load()
	if g == nil {
		return c.Refresh(ctx, TriggerStartup)
	}
	if !NeedsRefresh(g.FetchedOn, DateIn(c.now(), c.loc)) {
		return g, nil
	}
	return c.Refresh(ctx, TriggerDaily)
}

// Refresh fetches and normalizes both sources and swaps in the result. Startup and daily
// refreshes are skipped when the current generation was already fetched today; manual
// refreshes always fetch.
func (c *Cache) Refresh(ctx context.Context, trigger string) (*Generation, error) {
	v, err, shared := c.group.Do("refresh", func() (interface{}, error) {
		// A caller that saw a stale generation may arrive after another flight replaced it.
		if trigger != TriggerManual {
			if g := c.current.Load(); g != nil && !NeedsRefresh(g.FetchedOn, DateIn(c.now(), c.loc)) {
				return g, nil
			}
		}
		// Shared by every waiting caller, so detached from the first caller's cancellation.
		return c.refresh(context.WithoutCancel(ctx), trigger)
	})
	if shared {
		log.Debug().Str("trigger", trigger).Msg("joined in-flight refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Generation), nil
}

func (c *Cache) refresh(ctx context.Context, trigger string) (*Generation, error) {
	startedAt := c.now()
	logger := log.With().Str("trigger", trigger).Logger()

	run, err := StartRun(ctx, c.recorder, trigger, startedAt)
	if err != nil {
		logger.Warn().Err(err).Msg("record refresh start")
	}

	g, err := c.build(ctx)
	elapsed := time.Since(startedAt)
	if err == nil {
		c.current.Store(g)
		logger.Info().
			Str("runId", run.RunID).
			Int("usStates", len(g.US)).
			Int("ageRecords", len(g.AgeRecords)).
			Str("fingerprint", g.Fingerprint).
			Dur("elapsed", elapsed).
			Msg("refresh complete")
	} else {
		logger.Error().Err(err).Str("runId", run.RunID).Msg("refresh failed")
	}

	if ferr := FinishRun(ctx, c.recorder, run, g, err, c.now()); ferr != nil {
		logger.Warn().Err(ferr).Msg("record refresh finish")
	}
	if c.observer != nil {
		c.observer.ObserveRefresh(trigger, err, elapsed, g)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Cache) build(ctx context.Context) (*Generation, error) {
	raw, err := c.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildGeneration(raw, c.now(), c.loc)
}

// Location is the zone used for calendar-date decisions.
func (c *Cache) Location() *time.Location {
	return c.loc
}
