package repository

import (
	"context"
	"time"

	"briefly/internal/domain/entity"
)

// ListFilters contains optional filters for article listing.
type ListFilters struct {
	Category *string    // Optional: filter by category (case-insensitive substring)
	Since    *time.Time // Optional: filter articles created >= this time
	Limit    int        // 0 means no limit
}

// ArticleRepository is the persistence boundary for articles.
//
// The pipeline is the only writer: Upsert during collection,
// DeleteDuplicates during dedup, SetVisibility during filtering.
// The bot only reads (List*, Get); feedback lives in ResponseRepository.
type ArticleRepository interface {
	// Upsert inserts the article, ignoring the row when source_uri already
	// exists. Returns true when a new row was inserted.
	Upsert(ctx context.Context, article *entity.Article) (bool, error)

	// ExistsBySourceURIBatch reports, for each given URI, whether an
	// article with that source_uri is already stored.
	ExistsBySourceURIBatch(ctx context.Context, uris []string) (map[string]bool, error)

	// Get retrieves an article by ID. Returns (nil, nil) when not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)

	// ListActive retrieves servable (visibility=active) articles matching
	// the filters, newest first.
	ListActive(ctx context.Context, filters ListFilters) ([]*entity.Article, error)

	// ListUnseen retrieves active articles the given user has not yet
	// responded to, newest first.
	ListUnseen(ctx context.Context, userID int64, filters ListFilters) ([]*entity.Article, error)

	// ListCreatedSince retrieves all articles created at or after the
	// cutoff, regardless of visibility. Used by the filter stage.
	ListCreatedSince(ctx context.Context, cutoff time.Time) ([]*entity.Article, error)

	// DeleteDuplicates removes every article that shares a fingerprint
	// with an earlier-created one (ties broken by lowest id). Returns the
	// number of rows deleted. Idempotent.
	DeleteDuplicates(ctx context.Context) (int64, error)

	// SetVisibility updates the visibility of the given articles.
	// Returns the number of rows whose visibility actually changed.
	SetVisibility(ctx context.Context, ids []int64, visibility entity.Visibility) (int64, error)

	// CountActive returns the number of servable articles.
	CountActive(ctx context.Context) (int64, error)
}
