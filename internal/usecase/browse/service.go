package browse

import (
	"context"
	"fmt"
	"time"

	"briefly/internal/domain/entity"
	"briefly/internal/observability/metrics"
	"briefly/internal/repository"
)

// Service provides article browsing and feedback use cases.
// It handles business logic for the bot and delegates persistence to the
// repositories.
type Service struct {
	Articles  repository.ArticleRepository
	Responses repository.ResponseRepository
}

// ListOptions narrows a headline listing.
type ListOptions struct {
	// Category filters to one category when non-empty.
	Category string
	// MaxAge bounds how old listed articles may be. Zero means no bound.
	MaxAge time.Duration
	// Limit caps the number of results. Zero means the service default.
	Limit int
}

const defaultListLimit = 10

// Headlines retrieves servable articles matching the options, newest
// first. Used by the /news and /local commands.
func (s *Service) Headlines(ctx context.Context, opts ListOptions) ([]*entity.Article, error) {
	articles, err := s.Articles.ListActive(ctx, s.filters(opts))
	if err != nil {
		return nil, fmt.Errorf("list headlines: %w", err)
	}
	return articles, nil
}

// Unseen retrieves servable articles the user has not yet responded to,
// newest first. Used by the /label review flow.
func (s *Service) Unseen(ctx context.Context, userID int64, opts ListOptions) ([]*entity.Article, error) {
	articles, err := s.Articles.ListUnseen(ctx, userID, s.filters(opts))
	if err != nil {
		return nil, fmt.Errorf("list unseen articles: %w", err)
	}
	return articles, nil
}

// Read retrieves the full article for display. Excluded articles are not
// servable and report ErrArticleNotFound like a missing row.
func (s *Service) Read(ctx context.Context, articleID int64) (*entity.Article, error) {
	if articleID <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil || article.Visibility != entity.VisibilityActive {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// Respond records the user's like/dislike for an article. A repeated
// response overwrites the previous value, so the stored response always
// reflects the user's latest choice.
func (s *Service) Respond(ctx context.Context, userID, articleID int64, response entity.Response) error {
	if articleID <= 0 {
		return ErrInvalidArticleID
	}
	if !response.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResponse, response)
	}

	article, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return ErrArticleNotFound
	}

	err = s.Responses.Upsert(ctx, &entity.UserResponse{
		UserID:    userID,
		ArticleID: articleID,
		Response:  response,
	})
	if err != nil {
		return fmt.Errorf("record response: %w", err)
	}

	metrics.RecordResponse(string(response))
	return nil
}

// Stats returns the user's feedback counts alongside the number of
// servable articles. Used by the /status command.
func (s *Service) Stats(ctx context.Context, userID int64) (*repository.ResponseStats, int64, error) {
	stats, err := s.Responses.Stats(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("response stats: %w", err)
	}

	active, err := s.Articles.CountActive(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count active articles: %w", err)
	}

	return stats, active, nil
}

func (s *Service) filters(opts ListOptions) repository.ListFilters {
	filters := repository.ListFilters{Limit: opts.Limit}
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if opts.Category != "" {
		category := opts.Category
		filters.Category = &category
	}
	if opts.MaxAge > 0 {
		since := time.Now().Add(-opts.MaxAge)
		filters.Since = &since
	}
	return filters
}
