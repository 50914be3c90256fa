package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"briefly/internal/domain/entity"
	"briefly/internal/infra/newsapi"
	"briefly/internal/observability/metrics"
	"briefly/internal/repository"
)

// Searcher is the slice of the news API client the collect stage needs.
type Searcher interface {
	SearchTopic(ctx context.Context, topic newsapi.TopicQuery, dateStart, dateEnd string) ([]newsapi.Result, error)
}

// CollectStage pulls articles from the news API and stores new ones.
// Inserts use upsert-on-conflict keyed by source_uri, so reruns with
// identical source data add nothing. A search failure (network, auth)
// aborts the run; rows inserted before the failure remain.
type CollectStage struct {
	Client      Searcher
	ArticleRepo repository.ArticleRepository
	Topics      []newsapi.TopicQuery

	// Now is the clock; tests override it. Nil means time.Now.
	Now func() time.Time
}

func (s *CollectStage) Name() string { return "collect" }

func (s *CollectStage) Run(ctx context.Context, report *Report) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now().Format("2006-01-02")

	for _, topic := range s.Topics {
		results, err := s.Client.SearchTopic(ctx, topic, today, today)
		if err != nil {
			metrics.RecordStageError("collect")
			return fmt.Errorf("search topic %q: %w", topic.Name, err)
		}

		// Batch-check URIs first so the per-article work below only
		// touches genuinely new rows.
		uris := make([]string, 0, len(results))
		for _, res := range results {
			uris = append(uris, res.URI)
		}
		existsMap, err := s.ArticleRepo.ExistsBySourceURIBatch(ctx, uris)
		if err != nil {
			metrics.RecordStageError("collect")
			return fmt.Errorf("batch check source URIs: %w", err)
		}

		var inserted, duplicated int64
		for _, res := range results {
			report.Collected++
			if existsMap[res.URI] {
				duplicated++
				continue
			}

			art := &entity.Article{
				SourceURI:   res.URI,
				URL:         res.URL,
				Title:       res.Title,
				Body:        res.Body,
				Category:    topic.Category,
				SubCategory: topic.Name,
				Sentiment:   res.Sentiment,
				Fingerprint: entity.TitleFingerprint(res.Title),
				Visibility:  entity.VisibilityActive,
				PublishedAt: res.Published,
				CreatedAt:   now(),
			}
			if err := art.Validate(); err != nil {
				slog.Warn("skipping invalid search hit",
					slog.String("topic", topic.Name),
					slog.String("source_uri", res.URI),
					slog.Any("error", err))
				continue
			}

			ok, err := s.ArticleRepo.Upsert(ctx, art)
			if err != nil {
				metrics.RecordStageError("collect")
				return fmt.Errorf("upsert article %q: %w", res.URI, err)
			}
			if ok {
				inserted++
			} else {
				// Lost the race to a concurrent insert; the database
				// constraint resolved it, count as duplicate.
				duplicated++
			}
		}

		report.Inserted += inserted
		report.Duplicated += duplicated
		metrics.RecordArticlesCollected(topic.Name, inserted, duplicated)

		slog.Info("topic collected",
			slog.String("topic", topic.Name),
			slog.Int("hits", len(results)),
			slog.Int64("inserted", inserted),
			slog.Int64("duplicated", duplicated))
	}

	return nil
}
