package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/metrics"
	"github.com/weiwei-tsao/covid-state-compare/internal/visuals"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// RunLister reads refresh run history.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.RefreshRun, error)
}

// Router wires HTTP handlers.
type Router struct {
	svc     *covid.Service
	runs    RunLister
	origins string
}

// NewRouter builds the gin engine. runs and collector may be nil, which disables
// /api/refresh/runs and /metrics respectively.
func NewRouter(svc *covid.Service, runs RunLister, collector *metrics.Collector, allowedOrigins string) *gin.Engine {
	r := &Router{
		svc:     svc,
		runs:    runs,
		origins: allowedOrigins,
	}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery(), r.corsMiddleware())
	if collector != nil {
		router.Use(collector.Middleware())
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/states", r.listStates)
		api.GET("/states/:state", r.getState)
		api.GET("/compare", r.compare)
		api.GET("/national", r.getNational)
		api.GET("/charts/compare.png", r.comparePNG)
		api.GET("/charts/compare.mmd", r.compareMermaid)
		api.POST("/refresh", r.refresh)
		api.GET("/refresh/runs", r.listRuns)
	}

	return router
}

// seriesJSON is a chart series as parallel label and value arrays.
type seriesJSON struct {
	State string    `json:"state"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

type stateViewJSON struct {
	Series  seriesJSON         `json:"series"`
	Summary model.StateSummary `json:"summary"`
}

func toStateViewJSON(v covid.StateView) stateViewJSON {
	return stateViewJSON{
		Series: seriesJSON{
			State: v.Series.State,
			X:     v.Series.Labels(),
			Y:     v.Series.Values(),
		},
		Summary: v.Summary,
	}
}

func (r *Router) listStates(c *gin.Context) {
	view, err := r.svc.States(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if notModified(c, view.Fingerprint) {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Router) getState(c *gin.Context) {
	view, err := r.svc.State(c.Request.Context(), c.Param("state"))
	if err != nil {
		writeError(c, err)
		return
	}
	if notModified(c, view.Fingerprint+":"+view.Series.State) {
		return
	}
	c.JSON(http.StatusOK, toStateViewJSON(view))
}

func (r *Router) compare(c *gin.Context) {
	cmp, ok := r.loadComparison(c)
	if !ok {
		return
	}
	if notModified(c, cmp.Fingerprint+":"+cmp.First.Series.State+":"+cmp.Second.Series.State) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"first":    toStateViewJSON(cmp.First),
		"second":   toStateViewJSON(cmp.Second),
		"national": cmp.National,
		"caption":  cmp.Caption,
	})
}

func (r *Router) getNational(c *gin.Context) {
	view, err := r.svc.National(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if notModified(c, view.Fingerprint) {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Router) comparePNG(c *gin.Context) {
	cmp, ok := r.loadComparison(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := visuals.RenderComparisonPNG(&buf, cmp.First.Series, cmp.Second.Series); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (r *Router) compareMermaid(c *gin.Context) {
	cmp, ok := r.loadComparison(c)
	if !ok {
		return
	}
	text := visuals.GenerateComparisonChart(cmp.First.Series, cmp.Second.Series) + "\n\n" +
		visuals.GenerateSummaryTable(cmp.First.Summary, cmp.Second.Summary, cmp.National) + "\n" +
		cmp.Caption + "\n"
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (r *Router) loadComparison(c *gin.Context) (covid.Comparison, bool) {
	first := c.DefaultQuery("state1", covid.DefaultFirstState)
	second := c.DefaultQuery("state2", covid.DefaultSecondState)
	cmp, err := r.svc.Compare(c.Request.Context(), first, second)
	if err != nil {
		writeError(c, err)
		return covid.Comparison{}, false
	}
	return cmp, true
}

func (r *Router) refresh(c *gin.Context) {
	g, err := r.svc.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fetchedAt":   g.FetchedAt.Format(time.RFC3339),
		"fingerprint": g.Fingerprint,
		"stats":       g.Stats(),
	})
}

func (r *Router) listRuns(c *gin.Context) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh run history is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := r.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

// notModified sets the ETag and answers 304 when the client already holds it.
func notModified(c *gin.Context, tag string) bool {
	if tag == "" {
		return false
	}
	etag := strconv.Quote(tag)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

func writeError(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var rowErr *covid.RowError
	switch {
	case errors.Is(err, covid.ErrUnknownState):
		return http.StatusNotFound
	case errors.Is(err, covid.ErrZeroConfirmed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, covid.ErrFetch),
		errors.Is(err, covid.ErrSchema),
		errors.Is(err, covid.ErrNonNumericDeaths),
		errors.Is(err, covid.ErrUnknownAgeLabel),
		errors.As(err, &rowErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
