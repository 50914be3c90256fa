package pipeline_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"briefly/internal/domain/entity"
	"briefly/internal/infra/newsapi"
	"briefly/internal/repository"
)

// memArticleRepo is an in-memory ArticleRepository with the same
// observable semantics as the Postgres implementation.
type memArticleRepo struct {
	mu       sync.Mutex
	nextID   int64
	articles []*entity.Article

	upsertErr error
	deleteErr error
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{nextID: 1}
}

func (m *memArticleRepo) Upsert(ctx context.Context, article *entity.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	for _, a := range m.articles {
		if a.SourceURI == article.SourceURI {
			return false, nil
		}
	}
	stored := *article
	stored.ID = m.nextID
	m.nextID++
	if stored.Visibility == "" {
		stored.Visibility = entity.VisibilityActive
	}
	m.articles = append(m.articles, &stored)
	return true, nil
}

func (m *memArticleRepo) ExistsBySourceURIBatch(ctx context.Context, uris []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]bool)
	for _, uri := range uris {
		for _, a := range m.articles {
			if a.SourceURI == uri {
				result[uri] = true
				break
			}
		}
	}
	return result, nil
}

func (m *memArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memArticleRepo) ListActive(ctx context.Context, filters repository.ListFilters) ([]*entity.Article, error) {
	return m.list(func(a *entity.Article) bool {
		return a.Visibility == entity.VisibilityActive
	}, filters), nil
}

func (m *memArticleRepo) ListUnseen(ctx context.Context, userID int64, filters repository.ListFilters) ([]*entity.Article, error) {
	return m.list(func(a *entity.Article) bool {
		return a.Visibility == entity.VisibilityActive
	}, filters), nil
}

func (m *memArticleRepo) ListCreatedSince(ctx context.Context, cutoff time.Time) ([]*entity.Article, error) {
	return m.list(func(a *entity.Article) bool {
		return !a.CreatedAt.Before(cutoff)
	}, repository.ListFilters{}), nil
}

func (m *memArticleRepo) DeleteDuplicates(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}

	// Earliest created_at wins; ties break on lowest id.
	survivors := make(map[string]*entity.Article)
	for _, a := range m.articles {
		best, ok := survivors[a.Fingerprint]
		if !ok || a.CreatedAt.Before(best.CreatedAt) ||
			(a.CreatedAt.Equal(best.CreatedAt) && a.ID < best.ID) {
			survivors[a.Fingerprint] = a
		}
	}

	var kept []*entity.Article
	var removed int64
	for _, a := range m.articles {
		if survivors[a.Fingerprint] == a {
			kept = append(kept, a)
		} else {
			removed++
		}
	}
	m.articles = kept
	return removed, nil
}

func (m *memArticleRepo) SetVisibility(ctx context.Context, ids []int64, visibility entity.Visibility) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, id := range ids {
		for _, a := range m.articles {
			if a.ID == id && a.Visibility != visibility {
				a.Visibility = visibility
				changed++
			}
		}
	}
	return changed, nil
}

func (m *memArticleRepo) CountActive(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, a := range m.articles {
		if a.Visibility == entity.VisibilityActive {
			count++
		}
	}
	return count, nil
}

func (m *memArticleRepo) list(keep func(*entity.Article) bool, filters repository.ListFilters) []*entity.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Article
	for _, a := range m.articles {
		if !keep(a) {
			continue
		}
		if filters.Category != nil &&
			!strings.Contains(strings.ToLower(a.Category), strings.ToLower(*filters.Category)) {
			continue
		}
		if filters.Since != nil && a.CreatedAt.Before(*filters.Since) {
			continue
		}
		copied := *a
		out = append(out, &copied)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out
}

func listAll() repository.ListFilters { return repository.ListFilters{} }

// fakeSearcher serves canned results per topic name.
type fakeSearcher struct {
	results map[string][]newsapi.Result
	err     error
	calls   int
}

func (f *fakeSearcher) SearchTopic(ctx context.Context, topic newsapi.TopicQuery, dateStart, dateEnd string) ([]newsapi.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[topic.Name], nil
}

// fakeNotifier records announcements and optionally fails.
type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Announce(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}
