// Package browse provides the reading and feedback use cases behind the
// Telegram bot: listing servable articles, fetching full text, and
// recording like/dislike responses.
package browse

import (
	"fmt"

	"briefly/internal/domain/entity"
)

// Sentinel errors for browse use case operations. Each wraps the
// corresponding domain sentinel, so callers may match on either level.
var (
	// ErrArticleNotFound indicates that the requested article does not
	// exist or is no longer servable.
	ErrArticleNotFound = fmt.Errorf("article not found: %w", entity.ErrNotFound)

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = fmt.Errorf("invalid article ID: %w", entity.ErrInvalidInput)

	// ErrInvalidResponse indicates a response value outside like/dislike.
	ErrInvalidResponse = fmt.Errorf("invalid response value: %w", entity.ErrInvalidInput)
)
