package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
)

// MemoryArticles is an in-process article store with the same conflict
// semantics as ArticleRepository.
type MemoryArticles struct {
	mu    sync.Mutex
	items map[string]models.Article
}

func NewMemoryArticles(items ...models.Article) *MemoryArticles {
	m := &MemoryArticles{items: map[string]models.Article{}}
	for _, a := range items {
		m.items[a.ID] = a.Clone()
	}
	return m
}

func (m *MemoryArticles) Create(_ context.Context, a models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; ok {
		return domain.ConflictError{Resource: "article", Msg: "article already exists"}
	}
	m.items[a.ID] = a.Clone()
	return nil
}

func (m *MemoryArticles) GetByID(_ context.Context, id string) (models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return models.Article{}, domain.NotFoundError{Resource: "article"}
	}
	return a.Clone(), nil
}

func (m *MemoryArticles) List(_ context.Context, p query.Params, scope query.Scope) (query.PagedResult[models.Article], error) {
	return query.Apply(m.snapshot(), p, scope)
}

func (m *MemoryArticles) ListByStatus(_ context.Context, status domain.ArticleStatus, limit int) ([]models.Article, error) {
	var out []models.Article
	for _, a := range m.snapshot() {
		if a.Status == status && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryArticles) SaveTransition(_ context.Context, from domain.ArticleStatus, next models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[next.ID]
	if !ok || cur.Status != from {
		return domain.ConflictError{Resource: "article", Msg: "article changed concurrently, reload and try again"}
	}
	m.items[next.ID] = next.Clone()
	return nil
}

// Put overwrites an article unconditionally.
func (m *MemoryArticles) Put(a models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = a.Clone()
}

// snapshot is ordered by creation time, then id.
func (m *MemoryArticles) snapshot() []models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Article, 0, len(m.items))
	for _, a := range m.items {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type MemoryBindings struct {
	mu    sync.Mutex
	items map[string]models.Binding
}

func NewMemoryBindings() *MemoryBindings {
	return &MemoryBindings{items: map[string]models.Binding{}}
}

func (m *MemoryBindings) Get(_ context.Context, identityID string) (models.Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[identityID]
	if !ok {
		return models.Binding{}, domain.NotFoundError{Resource: "binding"}
	}
	return b, nil
}

func (m *MemoryBindings) Create(_ context.Context, b models.Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[b.IdentityID]; ok {
		return domain.ConflictError{Resource: "binding", Msg: "binding already exists"}
	}
	m.items[b.IdentityID] = b
	return nil
}

func (m *MemoryBindings) Update(_ context.Context, b models.Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[b.IdentityID]; !ok {
		return domain.NotFoundError{Resource: "binding"}
	}
	m.items[b.IdentityID] = b
	return nil
}

func (m *MemoryBindings) Delete(_ context.Context, identityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[identityID]; !ok {
		return domain.NotFoundError{Resource: "binding"}
	}
	delete(m.items, identityID)
	return nil
}

type MemoryUsers struct {
	mu    sync.Mutex
	items map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{items: map[string]models.User{}}
}

func (m *MemoryUsers) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := m.items[key]; ok {
		return domain.ConflictError{Resource: "user", Msg: "username already taken"}
	}
	m.items[key] = u
	return nil
}

func (m *MemoryUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}
