// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and UserResponse, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Visibility controls whether an article is servable to users.
// Filtering never deletes rows; it flips this flag so the bot's
// "already seen" bookkeeping stays stable.
type Visibility string

const (
	// VisibilityActive marks an article as servable.
	VisibilityActive Visibility = "active"

	// VisibilityExcluded marks an article as filtered out (soft delete).
	VisibilityExcluded Visibility = "excluded"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityActive || v == VisibilityExcluded
}

// Article represents one collected news item.
// SourceURI is the upstream identifier and the hard dedup key;
// Fingerprint detects near-duplicates published under different URIs.
type Article struct {
	ID          int64
	SourceURI   string
	URL         string
	Title       string
	Body        string
	Category    string
	SubCategory string
	Sentiment   float64
	Fingerprint string
	Visibility  Visibility
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks that the article has the fields required for persistence.
func (a *Article) Validate() error {
	if a.SourceURI == "" {
		return &ValidationError{Field: "source_uri", Message: "source URI is required"}
	}
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if a.Fingerprint == "" {
		return &ValidationError{Field: "fingerprint", Message: "fingerprint is required"}
	}
	if a.Visibility != "" && !a.Visibility.Valid() {
		return &ValidationError{Field: "visibility", Message: "unknown visibility value"}
	}
	if a.URL != "" {
		if err := ValidateURL(a.URL); err != nil {
			return err
		}
	}
	return nil
}
