package covid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/weiwei-tsao/covid-state-compare/pkg/model"
)

// Refresh triggers.
const (
	TriggerStartup = "startup"
	TriggerDaily   = "daily"
	TriggerManual  = "manual"
)

// Refresh run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// RunRecorder persists refresh run metadata.
type RunRecorder interface {
	CreateRun(ctx context.Context, run model.RefreshRun) error
	UpdateRun(ctx context.Context, run model.RefreshRun) error
}

// NopRecorder discards run records; used when no run store is configured.
type NopRecorder struct{}

func (NopRecorder) CreateRun(context.Context, model.RefreshRun) error { return nil }
func (NopRecorder) UpdateRun(context.Context, model.RefreshRun) error { return nil }

// StartRun initializes a RefreshRun record.
func StartRun(ctx context.Context, repo RunRecorder, trigger string, startedAt time.Time) (model.RefreshRun, error) {
	run := model.RefreshRun{
		RunID:     generateRunID(startedAt),
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: startedAt.UTC(),
	}
	return run, repo.CreateRun(ctx, run)
}

// FinishRun finalizes a RefreshRun record. g is nil when the refresh failed.
func FinishRun(ctx context.Context, repo RunRecorder, run model.RefreshRun, g *Generation, runErr error, finishedAt time.Time) error {
	run.FinishedAt = finishedAt.UTC()
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = RunStatusSuccess
		run.Stats = g.Stats()
		run.Fingerprint = g.Fingerprint
	}
	return repo.UpdateRun(ctx, run)
}

func generateRunID(t time.Time) string {
	return "RUN_" + t.UTC().Format("20060102T150405") + "_" + uuid.NewString()[:8]
}
