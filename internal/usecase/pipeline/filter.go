package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"briefly/internal/domain/entity"
	"briefly/internal/observability/metrics"
	"briefly/internal/repository"
)

const defaultFilterLookback = 72 * time.Hour

// FilterStage applies the rule set to recently collected articles and
// marks matches as excluded. It never deletes rows, so a rerun over the
// same window is a no-op.
type FilterStage struct {
	ArticleRepo repository.ArticleRepository
	Rules       Rules

	// Lookback bounds how far back the stage scans. Articles older than
	// this were already evaluated by a previous run.
	Lookback time.Duration

	Now func() time.Time
}

func (s *FilterStage) Name() string { return "filter" }

func (s *FilterStage) Run(ctx context.Context, report *Report) error {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	lookback := s.Lookback
	if lookback <= 0 {
		lookback = defaultFilterLookback
	}

	articles, err := s.ArticleRepo.ListCreatedSince(ctx, now.Add(-lookback))
	if err != nil {
		metrics.RecordStageError("filter")
		return fmt.Errorf("list recent articles: %w", err)
	}

	var excludeIDs []int64
	for _, article := range articles {
		matched, reason := s.Rules.Match(article, now)
		if !matched {
			continue
		}
		excludeIDs = append(excludeIDs, article.ID)
		slog.Debug("article excluded by filter",
			"article_id", article.ID,
			"title", article.Title,
			"reason", reason,
		)
	}

	if len(excludeIDs) == 0 {
		slog.Info("filter stage completed", "evaluated", len(articles), "excluded", 0)
		return nil
	}

	excluded, err := s.ArticleRepo.SetVisibility(ctx, excludeIDs, entity.VisibilityExcluded)
	if err != nil {
		metrics.RecordStageError("filter")
		return fmt.Errorf("exclude articles: %w", err)
	}

	report.Excluded += excluded
	metrics.RecordArticlesExcluded(excluded)
	slog.Info("filter stage completed", "evaluated", len(articles), "excluded", excluded)
	return nil
}
