package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"briefly/internal/domain/entity"
	"briefly/internal/repository"

	"github.com/lib/pq"
)

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, source_uri, url, title, body, category, sub_category,
sentiment, fingerprint, visibility, published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*entity.Article, error) {
	var article entity.Article
	err := row.Scan(&article.ID, &article.SourceURI, &article.URL, &article.Title,
		&article.Body, &article.Category, &article.SubCategory, &article.Sentiment,
		&article.Fingerprint, &article.Visibility, &article.PublishedAt,
		&article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Upsert inserts the article, ignoring the conflict if source_uri already
// exists. Database-level ON CONFLICT keeps the collector idempotent against
// reruns without a transaction spanning the whole fetch.
func (repo *ArticleRepo) Upsert(ctx context.Context, article *entity.Article) (bool, error) {
	const query = `
INSERT INTO articles
       (source_uri, url, title, body, category, sub_category, sentiment, fingerprint, visibility, published_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (source_uri) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query,
		article.SourceURI, article.URL, article.Title, article.Body,
		article.Category, article.SubCategory, article.Sentiment,
		article.Fingerprint, article.Visibility, article.PublishedAt,
		article.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("Upsert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Upsert: RowsAffected: %w", err)
	}
	return n > 0, nil
}

func (repo *ArticleRepo) ExistsBySourceURIBatch(ctx context.Context, uris []string) (map[string]bool, error) {
	if len(uris) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT source_uri FROM articles WHERE source_uri = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(uris))
	if err != nil {
		return nil, fmt.Errorf("ExistsBySourceURIBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("ExistsBySourceURIBatch: Scan: %w", err)
		}
		result[uri] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsBySourceURIBatch: rows.Err: %w", err)
	}

	return result, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE id = $1
LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ListActive(ctx context.Context, filters repository.ListFilters) ([]*entity.Article, error) {
	query, args := buildListQuery(`visibility = 'active'`, filters, nil)
	return repo.queryArticles(ctx, "ListActive", query, args)
}

// ListUnseen anti-joins user_responses so already-voted articles drop out
// of the listing regardless of the vote's value.
func (repo *ArticleRepo) ListUnseen(ctx context.Context, userID int64, filters repository.ListFilters) ([]*entity.Article, error) {
	cond := `visibility = 'active'
	AND NOT EXISTS (
		SELECT 1 FROM user_responses r
		WHERE r.article_id = articles.id AND r.user_id = $1
	)`
	query, args := buildListQuery(cond, filters, []any{userID})
	return repo.queryArticles(ctx, "ListUnseen", query, args)
}

func (repo *ArticleRepo) ListCreatedSince(ctx context.Context, cutoff time.Time) ([]*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE created_at >= $1
ORDER BY created_at DESC`, articleColumns)
	return repo.queryArticles(ctx, "ListCreatedSince", query, []any{cutoff})
}

// DeleteDuplicates removes every article that shares a fingerprint with an
// earlier-created one; on equal created_at the lowest id survives. Running
// it twice on stable data deletes nothing the second time.
func (repo *ArticleRepo) DeleteDuplicates(ctx context.Context) (int64, error) {
	const query = `
DELETE FROM articles a
USING articles b
WHERE a.fingerprint = b.fingerprint
  AND a.id <> b.id
  AND (b.created_at < a.created_at
       OR (b.created_at = a.created_at AND b.id < a.id))`
	res, err := repo.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("DeleteDuplicates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteDuplicates: RowsAffected: %w", err)
	}
	return n, nil
}

func (repo *ArticleRepo) SetVisibility(ctx context.Context, ids []int64, visibility entity.Visibility) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	const query = `
UPDATE articles
SET visibility = $1
WHERE id = ANY($2) AND visibility <> $1`
	res, err := repo.db.ExecContext(ctx, query, string(visibility), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("SetVisibility: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("SetVisibility: RowsAffected: %w", err)
	}
	return n, nil
}

func (repo *ArticleRepo) CountActive(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE visibility = 'active'`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) queryArticles(ctx context.Context, op, query string, args []any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// buildListQuery assembles the shared SELECT for listing endpoints.
// baseArgs holds positional parameters already referenced by cond.
func buildListQuery(cond string, filters repository.ListFilters, baseArgs []any) (string, []any) {
	args := baseArgs
	where := cond

	if filters.Category != nil {
		args = append(args, "%"+*filters.Category+"%")
		where += fmt.Sprintf(" AND category ILIKE $%d", len(args))
	}
	if filters.Since != nil {
		args = append(args, *filters.Since)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE %s
ORDER BY created_at DESC`, articleColumns, where)

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	return query, args
}
