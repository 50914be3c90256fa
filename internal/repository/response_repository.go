package repository

import (
	"context"

	"briefly/internal/domain/entity"
)

// ResponseStats summarizes a user's feedback activity.
type ResponseStats struct {
	Total    int64
	Likes    int64
	Dislikes int64
}

// ResponseRepository is the persistence boundary for user feedback.
type ResponseRepository interface {
	// Upsert inserts the response, or updates the stored value when the
	// user already responded to the article. The (user_id, article_id)
	// uniqueness constraint makes concurrent double-votes converge on the
	// latest value instead of racing.
	Upsert(ctx context.Context, response *entity.UserResponse) error

	// Get retrieves a user's response to an article.
	// Returns (nil, nil) when the user has not responded.
	Get(ctx context.Context, userID, articleID int64) (*entity.UserResponse, error)

	// Stats returns like/dislike counts for the given user.
	Stats(ctx context.Context, userID int64) (*ResponseStats, error)
}
