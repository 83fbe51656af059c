// Package query defines how callers narrow the article collection: filter,
// sorting and pagination parameters, their query-string encoding, and the
// paged result shape.
package query

import (
	"fmt"
	"math"
	"strings"
	"time"

	"articledesk/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Filter fields left at their zero value do not constrain the result.
// Set fields are combined with AND.
type Filter struct {
	Status        domain.ArticleStatus `json:"status,omitempty"`
	UserID        string               `json:"userId,omitempty"`
	ModeratorID   string               `json:"moderatorId,omitempty"`
	TitleQuery    string               `json:"titleQuery,omitempty"`
	CreatedAtFrom *time.Time           `json:"createdAtFrom,omitempty"`
	CreatedAtTo   *time.Time           `json:"createdAtTo,omitempty"`
}

type SortField string

const (
	SortCreatedAt SortField = "CreatedAt"
	SortTitle     SortField = "Title"
	SortStatus    SortField = "Status"
)

func ParseSortField(s string) (SortField, error) {
	for _, f := range []SortField{SortCreatedAt, SortTitle, SortStatus} {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", domain.ValidationError{Field: "sortBy", Msg: fmt.Sprintf("unknown sort field %q", s)}
}

type Sorting struct {
	SortBy       SortField `json:"sortBy"`
	IsDescending bool      `json:"isDescending"`
}

// DefaultSorting is newest first.
func DefaultSorting() Sorting {
	return Sorting{SortBy: SortCreatedAt, IsDescending: true}
}

// Pagination is 1-indexed.
type Pagination struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

func DefaultPagination() Pagination {
	return Pagination{PageNumber: 1, PageSize: DefaultPageSize}
}

// Offset is the number of items before the page. It saturates at
// math.MaxInt instead of overflowing, so far pages are just empty.
func (p Pagination) Offset() int {
	if p.PageNumber <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.PageNumber-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.PageNumber - 1) * p.PageSize
}

// Params is one complete article query.
type Params struct {
	Filter     Filter
	Sorting    Sorting
	Pagination Pagination
}

// Normalize fills defaults for unset sorting and pagination and checks the
// remaining values.
func (p Params) Normalize() (Params, error) {
	if p.Sorting.SortBy == "" {
		p.Sorting = DefaultSorting()
	}
	if _, err := ParseSortField(string(p.Sorting.SortBy)); err != nil {
		return p, err
	}
	if p.Pagination.PageNumber == 0 {
		p.Pagination.PageNumber = 1
	}
	if p.Pagination.PageSize == 0 {
		p.Pagination.PageSize = DefaultPageSize
	}
	if p.Pagination.PageNumber < 1 {
		return p, domain.ValidationError{Field: "pageNumber", Msg: "must be at least 1"}
	}
	if p.Pagination.PageSize < 1 || p.Pagination.PageSize > MaxPageSize {
		return p, domain.ValidationError{Field: "pageSize", Msg: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
	}
	if p.Filter.Status != "" && !p.Filter.Status.Valid() {
		return p, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", p.Filter.Status)}
	}
	if p.Filter.CreatedAtFrom != nil && p.Filter.CreatedAtTo != nil && p.Filter.CreatedAtTo.Before(*p.Filter.CreatedAtFrom) {
		return p, domain.ValidationError{Field: "createdAtTo", Msg: "precedes createdAtFrom"}
	}
	p.Filter.TitleQuery = strings.TrimSpace(p.Filter.TitleQuery)
	return p, nil
}

// PagedResult is one page of a query. Totals are derived by the producer;
// consumers only read them.
type PagedResult[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPagedResult derives the page metadata for items taken from a
// collection of totalCount matches.
func NewPagedResult[T any](items []T, totalCount int, p Pagination) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (totalCount + p.PageSize - 1) / p.PageSize
	}
	return PagedResult[T]{
		Items:       items,
		CurrentPage: p.PageNumber,
		PageSize:    p.PageSize,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasPrevious: p.PageNumber > 1,
		HasNext:     p.PageNumber < totalPages,
	}
}
