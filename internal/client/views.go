package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/guard"
	"articledesk/internal/query"
	"articledesk/internal/review"
)

var (
	// ErrStale is returned by a load whose response was superseded by a
	// newer load or submit. The view state was not touched.
	ErrStale = errors.New("response superseded by a newer request")
	// ErrBusy is returned while a submit is already in flight.
	ErrBusy   = errors.New("another action is in progress")
	errNoView = errors.New("no article loaded")
)

// ArticleAPI is the part of *Client the article view calls.
type ArticleAPI interface {
	GetArticle(ctx context.Context, id string) (models.Article, error)
	UpdateTitle(ctx context.Context, id, title string) (models.Article, error)
	Publish(ctx context.Context, id string) (models.Article, error)
	Reject(ctx context.Context, id, reason string) (models.Article, error)
}

// ArticleState is a consistent copy of the view.
type ArticleState struct {
	Article *models.Article
	Actions []review.Action
	Busy    bool
	Err     error
}

// ArticleView is the detail page controller. Every load or submit takes a
// new generation; only the newest generation may write the state.
type ArticleView struct {
	api ArticleAPI
	ids guard.IdentitySource

	mu      sync.Mutex
	gen     uint64
	article *models.Article
	actions []review.Action
	busy    bool
	err     error
}

func NewArticleView(api ArticleAPI, ids guard.IdentitySource) *ArticleView {
	return &ArticleView{api: api, ids: ids}
}

func (v *ArticleView) State() ArticleState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := ArticleState{Busy: v.busy, Err: v.err, Actions: append([]review.Action(nil), v.actions...)}
	if v.article != nil {
		a := v.article.Clone()
		s.Article = &a
	}
	return s
}

// Load fetches the article and recomputes the available actions.
func (v *ArticleView) Load(ctx context.Context, id string) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()
	return v.fetch(ctx, gen, id)
}

// fetch loads id on behalf of generation gen.
func (v *ArticleView) fetch(ctx context.Context, gen uint64, id string) error {
	a, err := v.api.GetArticle(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrStale
	}
	if err != nil {
		v.err = err
		if domain.IsNotFound(err) {
			v.article, v.actions = nil, nil
		}
		return err
	}
	v.setLocked(a)
	return nil
}

func (v *ArticleView) EditTitle(ctx context.Context, title string) error {
	if err := review.ValidateTitle(title); err != nil {
		return err
	}
	return v.submit(ctx, review.ActionEditTitle, func(id string) (models.Article, error) {
		return v.api.UpdateTitle(ctx, id, title)
	})
}

func (v *ArticleView) Publish(ctx context.Context) error {
	return v.submit(ctx, review.ActionPublish, func(id string) (models.Article, error) {
		return v.api.Publish(ctx, id)
	})
}

func (v *ArticleView) Reject(ctx context.Context, reason string) error {
	if err := review.ValidateReason(reason); err != nil {
		return err
	}
	return v.submit(ctx, review.ActionReject, func(id string) (models.Article, error) {
		return v.api.Reject(ctx, id, reason)
	})
}

// submit sends one transition. Actions the policy denies never reach the
// backend. A conflict or forbidden answer reloads the article; nothing is
// retried.
func (v *ArticleView) submit(ctx context.Context, action review.Action, send func(id string) (models.Article, error)) error {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return ErrBusy
	}
	if v.article == nil {
		v.mu.Unlock()
		return errNoView
	}
	identity, _ := v.ids.Current()
	if !review.CanTransition(identity, *v.article, action) {
		v.mu.Unlock()
		return domain.ForbiddenError{Action: string(action)}
	}
	id := v.article.ID
	v.busy = true
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	a, err := send(id)

	v.mu.Lock()
	v.busy = false
	if gen != v.gen {
		v.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStale, err)
		}
		return nil
	}
	if err == nil {
		v.setLocked(a)
		v.mu.Unlock()
		return nil
	}
	v.err = err
	reload := domain.IsConflict(err) || domain.IsForbidden(err)
	if reload {
		// the reload takes its generation before the lock is released so a
		// later Load still supersedes it
		v.gen++
		gen = v.gen
	}
	v.mu.Unlock()

	if reload {
		if lerr := v.fetch(ctx, gen, id); lerr != nil && !errors.Is(lerr, ErrStale) {
			return errors.Join(err, lerr)
		}
	}
	return err
}

func (v *ArticleView) setLocked(a models.Article) {
	identity, _ := v.ids.Current()
	v.article = &a
	v.actions = review.AvailableActions(identity, a)
	v.err = nil
}

// ArticleLister is the part of *Client the list view calls.
type ArticleLister interface {
	FilterArticles(ctx context.Context, p query.Params) (query.PagedResult[models.Article], error)
}

// ListView is the dashboard and article list controller. Only the response
// to the newest Load is kept.
type ListView struct {
	api ArticleLister

	mu     sync.Mutex
	gen    uint64
	params query.Params
	page   query.PagedResult[models.Article]
	err    error
}

func NewListView(api ArticleLister) *ListView {
	return &ListView{api: api}
}

func (v *ListView) Load(ctx context.Context, p query.Params) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	page, err := v.api.FilterArticles(ctx, p)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrStale
	}
	v.err = err
	if err != nil {
		return err
	}
	v.params, v.page = p, page
	return nil
}

// Next loads the following page, if any.
func (v *ListView) Next(ctx context.Context) error {
	v.mu.Lock()
	p, ok, current := v.params, v.page.HasNext, v.page.CurrentPage
	v.mu.Unlock()
	if !ok {
		return nil
	}
	p.Pagination.PageNumber = current + 1
	return v.Load(ctx, p)
}

func (v *ListView) Page() (query.PagedResult[models.Article], error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page, v.err
}
