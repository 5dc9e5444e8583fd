package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
)

// Collector holds the service's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastRefresh     prometheus.Gauge
	usStates        prometheus.Gauge
	ageRecords      prometheus.Gauge
	requests        *prometheus.CounterVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "covid_refreshes_total",
			Help: "Refreshes of the cached tables by trigger and outcome",
		}, []string{"trigger", "status"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "covid_refresh_duration_seconds",
			Help:    "Time spent fetching and normalizing both sources",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covid_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),
		usStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covid_us_states",
			Help: "US regions in the current snapshot table",
		}),
		ageRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "covid_age_records",
			Help: "Rows in the current age-group deaths table",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "covid_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	c.registry.MustRegister(
		c.refreshes,
		c.refreshDuration,
		c.lastRefresh,
		c.usStates,
		c.ageRecords,
		c.requests,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveRefresh records one refresh outcome.
func (c *Collector) ObserveRefresh(trigger string, err error, elapsed time.Duration, g *covid.Generation) {
	status := covid.RunStatusSuccess
	if err != nil {
		status = covid.RunStatusFailed
		if errors.Is(err, covid.ErrFetch) {
			status = "fetch_error"
		}
	}
	c.refreshes.WithLabelValues(trigger, status).Inc()
	c.refreshDuration.Observe(elapsed.Seconds())
	if g != nil {
		c.lastRefresh.Set(float64(g.FetchedAt.Unix()))
		c.usStates.Set(float64(len(g.US)))
		c.ageRecords.Set(float64(len(g.AgeRecords)))
	}
}

// Middleware counts requests per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.requests.WithLabelValues(route, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
