package services

import (
	"context"
	"io"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
)

// ArticleStore is implemented by repositories.ArticleRepository.
type ArticleStore interface {
	Create(ctx context.Context, a models.Article) error
	GetByID(ctx context.Context, id string) (models.Article, error)
	List(ctx context.Context, p query.Params, scope query.Scope) (query.PagedResult[models.Article], error)
	ListByStatus(ctx context.Context, status domain.ArticleStatus, limit int) ([]models.Article, error)
	SaveTransition(ctx context.Context, from domain.ArticleStatus, next models.Article) error
}

type BindingStore interface {
	Get(ctx context.Context, identityID string) (models.Binding, error)
	Create(ctx context.Context, b models.Binding) error
	Update(ctx context.Context, b models.Binding) error
	Delete(ctx context.Context, identityID string) error
}

type UserStore interface {
	Create(ctx context.Context, u models.User) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// FileStore keeps uploaded article files.
type FileStore interface {
	Save(name string, r io.Reader, limit int64) (path string, size int64, err error)
	Stat(path string) (size int64, err error)
	Remove(path string) error
}
