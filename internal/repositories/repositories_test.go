package repositories

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var articleCols = []string{
	"id", "user_id", "moderator_id", "file_name", "title", "status", "storage_path",
	"rejection_reason", "created_at", "processing_started_at", "processed_at", "published_at",
}

func newMock(t *testing.T) (sqlmock.Sqlmock, ArticleRepository, BindingRepository, UserRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return mock, ArticleRepository{DB: db}, BindingRepository{DB: db}, UserRepository{DB: db}
}

func TestGetArticleMapsNullColumns(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM articles WHERE id = \\?").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("a1", "u1", nil, "paper.pdf", nil, "AWAITING_APPROVAL", "uploads/a1.pdf", nil, created, created, created, nil))

	a, err := repo.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Title != nil || a.ModeratorID != nil || a.PublishedAt != nil {
		t.Fatalf("null columns should stay nil: %+v", a)
	}
	if a.Status != domain.StatusAwaitingApproval || a.DisplayTitle() != "paper.pdf" {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.ProcessedAt == nil || !a.ProcessedAt.Equal(created) {
		t.Fatalf("processedAt = %v", a.ProcessedAt)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	mock.ExpectQuery("FROM articles").WithArgs("missing").WillReturnRows(sqlmock.NewRows(articleCols))

	if _, err := repo.GetByID(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsesScopeAndPaging(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	p, err := query.Params{Pagination: query.Pagination{PageNumber: 2, PageSize: 2}}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles WHERE (status = ? OR user_id = ?)")).
		WithArgs("PUBLISHED", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?")).
		WithArgs("PUBLISHED", "u1", 2, 2).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("a3", "u1", nil, "c.pdf", "Third", "PENDING", nil, nil, created, nil, nil, nil))

	res, err := repo.List(context.Background(), p, query.Scope{ViewerID: "u1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.TotalCount != 3 || res.TotalPages != 2 || len(res.Items) != 1 || !res.HasPrevious || res.HasNext {
		t.Fatalf("unexpected page: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListSkipsSelectBeyondLastPage(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	p, _ := query.Params{Pagination: query.Pagination{PageNumber: 5, PageSize: 10}}.Normalize()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	res, err := repo.List(context.Background(), p, query.Scope{All: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 0 || res.TotalCount != 4 || res.HasNext {
		t.Fatalf("unexpected page: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListHugePageNumberSkipsSelect(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	p, _ := query.Params{Pagination: query.Pagination{PageNumber: math.MaxInt / 2, PageSize: 10}}.Normalize()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	res, err := repo.List(context.Background(), p, query.Scope{All: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Items) != 0 || res.HasNext {
		t.Fatalf("unexpected page: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveTransitionDetectsConcurrentChange(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	title := "Final"
	next := models.Article{ID: "a1", UserID: "u1", FileName: "a.pdf", Title: &title, Status: domain.StatusPublished}

	mock.ExpectExec("UPDATE articles").
		WithArgs(nil, "Final", "PUBLISHED", nil, nil, nil, nil, nil, "a1", "AWAITING_APPROVAL").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveTransition(context.Background(), domain.StatusAwaitingApproval, next)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSaveTransitionWritesRow(t *testing.T) {
	mock, repo, _, _ := newMock(t)
	mock.ExpectExec("UPDATE articles").WillReturnResult(sqlmock.NewResult(0, 1))

	next := models.Article{ID: "a1", Status: domain.StatusProcessing}
	if err := repo.SaveTransition(context.Background(), domain.StatusPending, next); err != nil {
		t.Fatalf("SaveTransition: %v", err)
	}
}

func TestBindingCreateDuplicateIsConflict(t *testing.T) {
	mock, _, repo, _ := newMock(t)
	mock.ExpectExec("INSERT INTO bindings").
		WithArgs("u1", "a@b.io").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), models.Binding{IdentityID: "u1", Email: "a@b.io"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestBindingUpdateAndDeleteMissingRow(t *testing.T) {
	mock, _, repo, _ := newMock(t)
	mock.ExpectExec("UPDATE bindings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM bindings").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), models.Binding{IdentityID: "u1", Email: "x@y.io"}); !domain.IsNotFound(err) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := repo.Delete(context.Background(), "u1"); !domain.IsNotFound(err) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestBindingGet(t *testing.T) {
	mock, _, repo, _ := newMock(t)
	mock.ExpectQuery("FROM bindings").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"identity_id", "email"}).AddRow("u1", "a@b.io"))

	b, err := repo.Get(context.Background(), "u1")
	if err != nil || b.Email != "a@b.io" {
		t.Fatalf("Get = %+v, %v", b, err)
	}
}

func TestUserRepository(t *testing.T) {
	mock, _, _, repo := newMock(t)
	created := time.Now().UTC()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery("FROM users WHERE username = \\?").WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow("u1", "alice", "hash", "USER", created))

	if err := repo.Create(context.Background(), models.User{ID: "u2", Username: "alice"}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	u, err := repo.GetByUsername(context.Background(), " alice ")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.Identity() != (domain.Identity{ID: "u1", Username: "alice", Role: domain.RoleUser}) {
		t.Fatalf("identity = %+v", u.Identity())
	}
}

func TestMemoryArticlesConditionalSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryArticles(models.Article{ID: "a1", UserID: "u1", FileName: "a.pdf", Status: domain.StatusPending})

	next := models.Article{ID: "a1", UserID: "u1", FileName: "a.pdf", Status: domain.StatusProcessing}
	if err := m.SaveTransition(ctx, domain.StatusPending, next); err != nil {
		t.Fatalf("SaveTransition: %v", err)
	}
	if err := m.SaveTransition(ctx, domain.StatusPending, next); !domain.IsConflict(err) {
		t.Fatalf("stale save: expected conflict, got %v", err)
	}
	if err := m.Create(ctx, next); !domain.IsConflict(err) {
		t.Fatalf("duplicate create: expected conflict, got %v", err)
	}
}

func TestMemoryUsersCaseInsensitive(t *testing.T) {
	m := NewMemoryUsers()
	ctx := context.Background()
	if err := m.Create(ctx, models.User{ID: "u1", Username: "Alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create(ctx, models.User{ID: "u2", Username: "alice"}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if u, err := m.GetByUsername(ctx, " ALICE "); err != nil || u.ID != "u1" {
		t.Fatalf("GetByUsername = %+v, %v", u, err)
	}
}
