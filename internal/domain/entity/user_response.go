package entity

import "time"

// Response is a user's verdict on an article.
type Response string

const (
	ResponseLike    Response = "like"
	ResponseDislike Response = "dislike"
)

// Valid reports whether r is one of the known response values.
func (r Response) Valid() bool {
	return r == ResponseLike || r == ResponseDislike
}

// UserResponse records one user's like/dislike feedback on one article.
// A user has at most one active response per article; re-voting
// overwrites the previous value.
type UserResponse struct {
	ID        int64
	UserID    int64
	ArticleID int64
	Response  Response
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the response row is complete and well-formed.
func (r *UserResponse) Validate() error {
	if r.UserID == 0 {
		return &ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if r.ArticleID == 0 {
		return &ValidationError{Field: "article_id", Message: "article ID is required"}
	}
	if !r.Response.Valid() {
		return &ValidationError{Field: "response", Message: "response must be like or dislike"}
	}
	return nil
}
