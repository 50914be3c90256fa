package pipeline

import (
	"context"
	"log/slog"

	"briefly/internal/infra/notifier"
	"briefly/internal/observability/metrics"
)

// NotifyStage announces to subscribers that fresh articles arrived. It
// only fires when the collect stage inserted at least one new row, and a
// delivery failure is logged without failing the pipeline: the articles
// are already stored and servable.
type NotifyStage struct {
	Notifier notifier.Notifier
}

func (s *NotifyStage) Name() string { return "notify" }

func (s *NotifyStage) Run(ctx context.Context, report *Report) error {
	if report.Inserted == 0 {
		slog.Info("notify stage skipped", "reason", "no new articles")
		return nil
	}

	if err := s.Notifier.Announce(ctx, notifier.AnnouncementMessage); err != nil {
		metrics.RecordNotification("failure")
		slog.Error("announcement delivery failed", "error", err)
		return nil
	}

	report.Announced = true
	metrics.RecordNotification("success")
	slog.Info("announcement delivered", "inserted", report.Inserted)
	return nil
}
