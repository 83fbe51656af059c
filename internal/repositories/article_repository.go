package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "articledesk/internal/config"
	intdb "articledesk/internal/db"
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
)

const articleColumns = `id, user_id, moderator_id, file_name, title, status, storage_path,
	rejection_reason, created_at, processing_started_at, processed_at, published_at`

type ArticleRepository struct {
	DB *sql.DB
}

func (r ArticleRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, domain.InternalError{Msg: "database not connected"}
}

func (r ArticleRepository) Create(ctx context.Context, a models.Article) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, nullString(a.ModeratorID), a.FileName, nullString(a.Title), string(a.Status),
		nullString(a.StoragePath), nullString(a.RejectionReason), a.CreatedAt.UTC(),
		nullTime(a.ProcessingStartedAt), nullTime(a.ProcessedAt), nullTime(a.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r ArticleRepository) GetByID(ctx context.Context, id string) (models.Article, error) {
	db, err := r.db()
	if err != nil {
		return models.Article{}, err
	}
	row := db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ? LIMIT 1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, domain.NotFoundError{Resource: "article", Err: err}
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("select article: %w", err)
	}
	return a, nil
}

// List runs a normalized query within scope.
func (r ArticleRepository) List(ctx context.Context, p query.Params, scope query.Scope) (query.PagedResult[models.Article], error) {
	db, err := r.db()
	if err != nil {
		return query.PagedResult[models.Article]{}, err
	}
	q := query.BuildSQL(p, scope)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE `+q.Where, q.Args...).Scan(&total); err != nil {
		return query.PagedResult[models.Article]{}, fmt.Errorf("count articles: %w", err)
	}

	items := []models.Article{}
	if q.Offset >= 0 && q.Offset < total {
		args := append(append([]any{}, q.Args...), q.Limit, q.Offset)
		rows, err := db.QueryContext(ctx,
			`SELECT `+articleColumns+` FROM articles WHERE `+q.Where+` ORDER BY `+q.OrderBy+` LIMIT ? OFFSET ?`,
			args...)
		if err != nil {
			return query.PagedResult[models.Article]{}, fmt.Errorf("list articles: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanArticle(rows)
			if err != nil {
				return query.PagedResult[models.Article]{}, fmt.Errorf("scan article: %w", err)
			}
			items = append(items, a)
		}
		if err := rows.Err(); err != nil {
			return query.PagedResult[models.Article]{}, fmt.Errorf("list articles: %w", err)
		}
	}
	return query.NewPagedResult(items, total, p.Pagination), nil
}

// ListByStatus returns up to limit articles in status, oldest first.
func (r ArticleRepository) ListByStatus(ctx context.Context, status domain.ArticleStatus, limit int) ([]models.Article, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT ?`,
		string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list %s articles: %w", status, err)
	}
	defer rows.Close()

	var out []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveTransition persists next only if the stored article is still in
// status from. A concurrent change surfaces as ConflictError.
func (r ArticleRepository) SaveTransition(ctx context.Context, from domain.ArticleStatus, next models.Article) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE articles
		SET moderator_id = ?, title = ?, status = ?, storage_path = ?, rejection_reason = ?,
		    processing_started_at = ?, processed_at = ?, published_at = ?
		WHERE id = ? AND status = ?`,
		nullString(next.ModeratorID), nullString(next.Title), string(next.Status), nullString(next.StoragePath),
		nullString(next.RejectionReason), nullTime(next.ProcessingStartedAt), nullTime(next.ProcessedAt),
		nullTime(next.PublishedAt), next.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if n == 0 {
		return domain.ConflictError{Resource: "article", Msg: "article changed concurrently, reload and try again"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (models.Article, error) {
	var (
		a                                   models.Article
		status                              string
		moderator, title, storage, reason   sql.NullString
		startedAt, processedAt, publishedAt sql.NullTime
	)
	if err := s.Scan(&a.ID, &a.UserID, &moderator, &a.FileName, &title, &status, &storage,
		&reason, &a.CreatedAt, &startedAt, &processedAt, &publishedAt); err != nil {
		return models.Article{}, err
	}
	a.Status = domain.ArticleStatus(status)
	a.ModeratorID = fromNullString(moderator)
	a.Title = fromNullString(title)
	a.StoragePath = fromNullString(storage)
	a.RejectionReason = fromNullString(reason)
	a.CreatedAt = a.CreatedAt.UTC()
	a.ProcessingStartedAt = fromNullTime(startedAt)
	a.ProcessedAt = fromNullTime(processedAt)
	a.PublishedAt = fromNullTime(publishedAt)
	return a, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return intdb.NullIfEmpty(*p)
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
