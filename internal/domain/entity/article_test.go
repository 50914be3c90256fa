package entity_test

import (
	"errors"
	"strings"
	"testing"

	"briefly/internal/domain/entity"
)

func validArticle() *entity.Article {
	return &entity.Article{
		SourceURI:   "er-001",
		URL:         "https://example.com/a",
		Title:       "Strait tensions rise",
		Fingerprint: entity.TitleFingerprint("Strait tensions rise"),
		Visibility:  entity.VisibilityActive,
	}
}

func TestArticleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entity.Article)
		wantErr bool
	}{
		{"valid", func(a *entity.Article) {}, false},
		{"missing source URI", func(a *entity.Article) { a.SourceURI = "" }, true},
		{"missing title", func(a *entity.Article) { a.Title = "" }, true},
		{"missing fingerprint", func(a *entity.Article) { a.Fingerprint = "" }, true},
		{"unknown visibility", func(a *entity.Article) { a.Visibility = "hidden" }, true},
		{"empty visibility allowed", func(a *entity.Article) { a.Visibility = "" }, false},
		{"empty URL allowed", func(a *entity.Article) { a.URL = "" }, false},
		{"non-http URL", func(a *entity.Article) { a.URL = "ftp://example.com" }, true},
		{"URL too long", func(a *entity.Article) { a.URL = "https://example.com/" + strings.Repeat("x", 3000) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArticle()
			tt.mutate(a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err != nil {
				var ve *entity.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestUserResponseValidate(t *testing.T) {
	tests := []struct {
		name     string
		response entity.UserResponse
		wantErr  bool
	}{
		{"like", entity.UserResponse{UserID: 7, ArticleID: 1, Response: entity.ResponseLike}, false},
		{"dislike", entity.UserResponse{UserID: 7, ArticleID: 1, Response: entity.ResponseDislike}, false},
		{"missing user", entity.UserResponse{ArticleID: 1, Response: entity.ResponseLike}, true},
		{"missing article", entity.UserResponse{UserID: 7, Response: entity.ResponseLike}, true},
		{"neutral not allowed", entity.UserResponse{UserID: 7, ArticleID: 1, Response: "neutral"}, true},
		{"empty response", entity.UserResponse{UserID: 7, ArticleID: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.response.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
