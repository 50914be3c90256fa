package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"briefly/internal/domain/entity"
	pg "briefly/internal/infra/adapter/persistence/postgres"
	"briefly/internal/repository"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var articleCols = []string{
	"id", "source_uri", "url", "title", "body", "category", "sub_category",
	"sentiment", "fingerprint", "visibility", "published_at", "created_at", "updated_at",
}

func artRow(a *entity.Article) *sqlmock.Rows {
	return sqlmock.NewRows(articleCols).AddRow(
		a.ID, a.SourceURI, a.URL, a.Title, a.Body, a.Category, a.SubCategory,
		a.Sentiment, a.Fingerprint, a.Visibility, a.PublishedAt, a.CreatedAt, a.UpdatedAt,
	)
}

func testArticle(now time.Time) *entity.Article {
	return &entity.Article{
		ID:          1,
		SourceURI:   "er-001",
		URL:         "https://example.com/a",
		Title:       "Strait tensions rise",
		Body:        "body",
		Category:    "geopolitics",
		SubCategory: "security",
		Sentiment:   0.1,
		Fingerprint: entity.TitleFingerprint("Strait tensions rise"),
		Visibility:  entity.VisibilityActive,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

/* ─────────────────────────── 1. Upsert ─────────────────────────── */

func TestArticleRepo_Upsert_Inserted(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := testArticle(time.Now())
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs(a.SourceURI, a.URL, a.Title, a.Body, a.Category, a.SubCategory,
			a.Sentiment, a.Fingerprint, a.Visibility, a.PublishedAt, a.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := pg.NewArticleRepo(db)
	inserted, err := repo.Upsert(context.Background(), a)
	if err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if !inserted {
		t.Fatal("expected inserted=true for a new row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Upsert_ConflictIsNotAnError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := testArticle(time.Now())
	// ON CONFLICT DO NOTHING reports zero affected rows.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewArticleRepo(db)
	inserted, err := repo.Upsert(context.Background(), a)
	if err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if inserted {
		t.Fatal("expected inserted=false on conflict")
	}
}

/* ─────────────────────────── 2. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	want := testArticle(now)

	mock.ExpectQuery("FROM articles").
		WithArgs(int64(1)).
		WillReturnRows(artRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(articleCols))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil article, got %+v", got)
	}
}

/* ─────────────────────────── 3. Listing ─────────────────────────── */

func TestArticleRepo_ListActive_WithFilters(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	since := now.Add(-24 * time.Hour)
	category := "geopolitics"

	mock.ExpectQuery("visibility = 'active'").
		WithArgs("%geopolitics%", since, 5).
		WillReturnRows(artRow(testArticle(now)))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListActive(context.Background(), repository.ListFilters{
		Category: &category,
		Since:    &since,
		Limit:    5,
	})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListActive err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_ListUnseen_FiltersByUser(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("NOT EXISTS").
		WithArgs(int64(7), 10).
		WillReturnRows(sqlmock.NewRows(articleCols)) // all seen

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListUnseen(context.Background(), 7, repository.ListFilters{Limit: 10})
	if err != nil {
		t.Fatalf("ListUnseen err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestArticleRepo_ListCreatedSince(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	mock.ExpectQuery("created_at >=").
		WithArgs(cutoff).
		WillReturnRows(artRow(testArticle(now)))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListCreatedSince(context.Background(), cutoff)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListCreatedSince err=%v len=%d", err, len(got))
	}
}

/* ─────────────────────────── 4. Dedup ─────────────────────────── */

func TestArticleRepo_DeleteDuplicates(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles a")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := pg.NewArticleRepo(db)
	removed, err := repo.DeleteDuplicates(context.Background())
	if err != nil {
		t.Fatalf("DeleteDuplicates err=%v", err)
	}
	if removed != 3 {
		t.Fatalf("removed=%d, want 3", removed)
	}
}

/* ─────────────────────────── 5. Visibility ─────────────────────────── */

func TestArticleRepo_SetVisibility(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles")).
		WithArgs("excluded", pq.Array([]int64{1, 2})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := pg.NewArticleRepo(db)
	n, err := repo.SetVisibility(context.Background(), []int64{1, 2}, entity.VisibilityExcluded)
	if err != nil {
		t.Fatalf("SetVisibility err=%v", err)
	}
	if n != 2 {
		t.Fatalf("n=%d, want 2", n)
	}
}

func TestArticleRepo_SetVisibility_EmptyIDsSkipsQuery(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	n, err := repo.SetVisibility(context.Background(), nil, entity.VisibilityExcluded)
	if err != nil || n != 0 {
		t.Fatalf("SetVisibility err=%v n=%d", err, n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 6. Existence / counting ─────────────────────────── */

func TestArticleRepo_ExistsBySourceURIBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT source_uri FROM articles")).
		WithArgs(pq.Array([]string{"er-001", "er-002"})).
		WillReturnRows(sqlmock.NewRows([]string{"source_uri"}).AddRow("er-001"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsBySourceURIBatch(context.Background(), []string{"er-001", "er-002"})
	if err != nil {
		t.Fatalf("ExistsBySourceURIBatch err=%v", err)
	}
	if !got["er-001"] || got["er-002"] {
		t.Fatalf("unexpected existence map: %v", got)
	}
}

func TestArticleRepo_CountActive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	repo := pg.NewArticleRepo(db)
	count, err := repo.CountActive(context.Background())
	if err != nil || count != 12 {
		t.Fatalf("CountActive err=%v count=%d", err, count)
	}
}
