// Package pipeline implements the batch collection pipeline: collect,
// dedupe, filter, notify. Stages run strictly sequentially and the run
// aborts on the first stage error; there is no retry and no rollback of
// steps that already completed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Report accumulates counts across one pipeline run. Stages write the
// fields they own; later stages may read what earlier stages recorded.
type Report struct {
	Collected  int64 // search hits seen by the collect stage
	Inserted   int64 // new article rows written
	Duplicated int64 // hits skipped as already stored
	Removed    int64 // near-duplicate rows deleted by dedupe
	Excluded   int64 // rows soft-deleted by the filter
	Announced  bool  // whether the notify stage sent a message

	Started  time.Time
	Duration time.Duration
}

// Stage is one step of the batch pipeline.
type Stage interface {
	// Name identifies the stage in logs and metrics.
	Name() string

	// Run executes the stage, updating the shared report.
	// A returned error aborts the whole run.
	Run(ctx context.Context, report *Report) error
}

// Runner executes stages in fixed order, mirroring the shell script it
// replaces: first non-nil error stops the run, already-applied side
// effects remain.
type Runner struct {
	stages []Stage
	logger *slog.Logger
}

// NewRunner creates a Runner over the given stages.
// A nil logger falls back to slog.Default().
func NewRunner(logger *slog.Logger, stages ...Stage) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stages: stages, logger: logger}
}

// Run executes all stages sequentially and returns the accumulated
// report. On failure the report reflects everything that completed
// before the failing stage.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: time.Now()}

	for _, stage := range r.stages {
		stageStart := time.Now()
		if err := stage.Run(ctx, report); err != nil {
			report.Duration = time.Since(report.Started)
			r.logger.Error("pipeline stage failed",
				slog.String("stage", stage.Name()),
				slog.Duration("stage_duration", time.Since(stageStart)),
				slog.Any("error", err))
			return report, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		r.logger.Info("pipeline stage completed",
			slog.String("stage", stage.Name()),
			slog.Duration("stage_duration", time.Since(stageStart)))
	}

	report.Duration = time.Since(report.Started)
	r.logger.Info("pipeline run completed",
		slog.Int64("collected", report.Collected),
		slog.Int64("inserted", report.Inserted),
		slog.Int64("duplicated", report.Duplicated),
		slog.Int64("removed", report.Removed),
		slog.Int64("excluded", report.Excluded),
		slog.Bool("announced", report.Announced),
		slog.Duration("duration", report.Duration))
	return report, nil
}
