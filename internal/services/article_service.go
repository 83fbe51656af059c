package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
	"articledesk/internal/review"
	"articledesk/internal/utils"

	"github.com/google/uuid"
)

// AllowedExtensions are the document types accepted on upload.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ArticleService runs every article operation: visibility, access policy,
// the lifecycle transition and the conditional write.
type ArticleService struct {
	Articles  ArticleStore
	Files     FileStore
	MaxBytes  int64
	RequestID string
}

// Upload stores the document and creates a PENDING article owned by the
// uploader.
func (s ArticleService) Upload(ctx context.Context, by domain.Identity, fileName string, r io.Reader) (models.Article, error) {
	if !review.CanUpload(by) {
		return models.Article{}, domain.ForbiddenError{Action: string(review.ActionUpload), Msg: "only authors can upload articles"}
	}
	name := utils.SafeFileName(fileName)
	ext := strings.ToLower(filepath.Ext(name))
	if name == "" || !AllowedExtensions[ext] {
		return models.Article{}, domain.ValidationError{Field: "file", Msg: "file must be a .pdf, .doc or .docx document"}
	}

	id := uuid.NewString()
	path, size, err := s.Files.Save(id+ext, r, s.MaxBytes)
	if err != nil {
		return models.Article{}, err
	}
	if size == 0 {
		_ = s.Files.Remove(path)
		return models.Article{}, domain.ValidationError{Field: "file", Msg: "file is empty"}
	}

	a := models.Article{
		ID:          id,
		UserID:      by.ID,
		FileName:    name,
		Status:      domain.StatusPending,
		StoragePath: &path,
		CreatedAt:   utils.NowUTC(),
	}
	if err := s.Articles.Create(ctx, a); err != nil {
		_ = s.Files.Remove(path)
		return models.Article{}, err
	}
	utils.LogEvent(s.RequestID, "articles", "upload", "article_id", a.ID, "user_id", by.ID, "size", size)
	return a, nil
}

// Get returns the article if by may see it. Invisible articles read as
// missing.
func (s ArticleService) Get(ctx context.Context, by domain.Identity, id string) (models.Article, error) {
	a, err := s.Articles.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Article{}, err
	}
	if !query.ScopeFor(by).Visible(a) {
		return models.Article{}, domain.NotFoundError{Resource: "article"}
	}
	return a, nil
}

func (s ArticleService) Filter(ctx context.Context, by domain.Identity, p query.Params) (query.PagedResult[models.Article], error) {
	p, err := p.Normalize()
	if err != nil {
		return query.PagedResult[models.Article]{}, err
	}
	return s.Articles.List(ctx, p, query.ScopeFor(by))
}

func (s ArticleService) UpdateTitle(ctx context.Context, by domain.Identity, id, title string) (models.Article, error) {
	return s.transition(ctx, id, review.Command{Action: review.ActionEditTitle, Actor: by, Title: title})
}

func (s ArticleService) Publish(ctx context.Context, by domain.Identity, id string) (models.Article, error) {
	return s.transition(ctx, id, review.Command{Action: review.ActionPublish, Actor: by})
}

func (s ArticleService) Reject(ctx context.Context, by domain.Identity, id, reason string) (models.Article, error) {
	return s.transition(ctx, id, review.Command{Action: review.ActionReject, Actor: by, Reason: reason})
}

func (s ArticleService) transition(ctx context.Context, id string, cmd review.Command) (models.Article, error) {
	current, err := s.Get(ctx, cmd.Actor, id)
	if err != nil {
		return models.Article{}, err
	}
	next, err := review.Apply(current, cmd)
	if err != nil {
		return models.Article{}, err
	}
	if err := review.CheckInvariants(next); err != nil {
		return models.Article{}, domain.InternalError{Msg: "article " + next.ID + " breaks invariant: " + err.Error()}
	}
	if err := s.Articles.SaveTransition(ctx, current.Status, next); err != nil {
		return models.Article{}, err
	}
	utils.LogEvent(s.RequestID, "articles", string(cmd.Action),
		"article_id", next.ID, "by", cmd.Actor.ID, "from", current.Status, "to", next.Status)
	return next, nil
}
