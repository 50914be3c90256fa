package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"briefly/internal/domain/entity"
	"briefly/internal/repository"
)

type ResponseRepo struct {
	db *sql.DB
}

func NewResponseRepo(db *sql.DB) repository.ResponseRepository {
	return &ResponseRepo{db: db}
}

// Upsert records a vote. The (user_id, article_id) unique constraint turns
// a re-vote into an update, so the latest response always wins and
// concurrent double-votes cannot create a second row.
func (repo *ResponseRepo) Upsert(ctx context.Context, response *entity.UserResponse) error {
	if err := response.Validate(); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	const query = `
INSERT INTO user_responses (user_id, article_id, response)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, article_id)
DO UPDATE SET response = EXCLUDED.response`
	_, err := repo.db.ExecContext(ctx, query,
		response.UserID, response.ArticleID, string(response.Response))
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *ResponseRepo) Get(ctx context.Context, userID, articleID int64) (*entity.UserResponse, error) {
	const query = `
SELECT id, user_id, article_id, response, created_at, updated_at
FROM user_responses
WHERE user_id = $1 AND article_id = $2
LIMIT 1`
	var response entity.UserResponse
	err := repo.db.QueryRowContext(ctx, query, userID, articleID).
		Scan(&response.ID, &response.UserID, &response.ArticleID,
			&response.Response, &response.CreatedAt, &response.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &response, nil
}

func (repo *ResponseRepo) Stats(ctx context.Context, userID int64) (*repository.ResponseStats, error) {
	const query = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE response = 'like'),
       COUNT(*) FILTER (WHERE response = 'dislike')
FROM user_responses
WHERE user_id = $1`
	var stats repository.ResponseStats
	err := repo.db.QueryRowContext(ctx, query, userID).
		Scan(&stats.Total, &stats.Likes, &stats.Dislikes)
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	return &stats, nil
}
