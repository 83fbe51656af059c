package query

import (
	"sort"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

// Scope limits a query to the articles one viewer may see. Moderators see
// everything; everyone else sees their own articles and published ones.
type Scope struct {
	All      bool
	ViewerID string
}

func ScopeFor(id domain.Identity) Scope {
	if id.IsAdmin() {
		return Scope{All: true}
	}
	return Scope{ViewerID: id.ID}
}

func (s Scope) Visible(a models.Article) bool {
	if s.All {
		return true
	}
	return a.Status == domain.StatusPublished || (s.ViewerID != "" && a.UserID == s.ViewerID)
}

// Matches reports whether a satisfies every set field of f.
func (f Filter) Matches(a models.Article) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if f.ModeratorID != "" && (a.ModeratorID == nil || *a.ModeratorID != f.ModeratorID) {
		return false
	}
	if q := strings.TrimSpace(f.TitleQuery); q != "" {
		if !strings.Contains(strings.ToLower(a.DisplayTitle()), strings.ToLower(q)) {
			return false
		}
	}
	if f.CreatedAtFrom != nil && a.CreatedAt.Before(*f.CreatedAtFrom) {
		return false
	}
	if f.CreatedAtTo != nil && a.CreatedAt.After(*f.CreatedAtTo) {
		return false
	}
	return true
}

// Apply evaluates p over an in-memory collection. It orders ties by id so
// identical calls over an unchanged collection return identical pages.
func Apply(all []models.Article, p Params, scope Scope) (PagedResult[models.Article], error) {
	p, err := p.Normalize()
	if err != nil {
		return PagedResult[models.Article]{}, err
	}

	matched := make([]models.Article, 0, len(all))
	for _, a := range all {
		if scope.Visible(a) && p.Filter.Matches(a) {
			matched = append(matched, a.Clone())
		}
	}

	less := lessFunc(p.Sorting.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case less(a, b):
			return !p.Sorting.IsDescending
		case less(b, a):
			return p.Sorting.IsDescending
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := p.Pagination.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start + p.Pagination.PageSize
	if end > total {
		end = total
	}
	return NewPagedResult(matched[start:end:end], total, p.Pagination), nil
}

func lessFunc(f SortField) func(a, b models.Article) bool {
	switch f {
	case SortTitle:
		return func(a, b models.Article) bool {
			return strings.ToLower(a.DisplayTitle()) < strings.ToLower(b.DisplayTitle())
		}
	case SortStatus:
		return func(a, b models.Article) bool { return a.Status < b.Status }
	default:
		return func(a, b models.Article) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
