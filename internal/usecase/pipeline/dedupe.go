package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"briefly/internal/observability/metrics"
	"briefly/internal/repository"
)

// DedupeStage removes near-duplicate articles: rows sharing a content
// fingerprint with an earlier-created row (lowest id on ties). The scan
// is a single set-based delete, so running it twice on stable data is a
// no-op.
type DedupeStage struct {
	ArticleRepo repository.ArticleRepository
}

func (s *DedupeStage) Name() string { return "dedupe" }

func (s *DedupeStage) Run(ctx context.Context, report *Report) error {
	removed, err := s.ArticleRepo.DeleteDuplicates(ctx)
	if err != nil {
		metrics.RecordStageError("dedupe")
		return fmt.Errorf("delete duplicates: %w", err)
	}

	report.Removed = removed
	metrics.RecordArticlesDeduplicated(removed)
	slog.Info("dedupe completed", slog.Int64("removed", removed))
	return nil
}
