package client

import (
	"context"

	"articledesk/internal/domain"
	"articledesk/internal/query"
)

// DashboardStats are the headline counts of the dashboard. They come from
// the server's totalCount, one narrowed query per figure.
type DashboardStats struct {
	Total           int `json:"total"`
	InProgress      int `json:"inProgress"`
	Published       int `json:"published"`
	PendingApproval int `json:"pendingApproval"`
}

// LoadDashboardStats counts the articles matching base, overall and per
// status. PENDING and PROCESSING both count as in progress.
func LoadDashboardStats(ctx context.Context, api ArticleLister, base query.Filter) (DashboardStats, error) {
	count := func(status domain.ArticleStatus) (int, error) {
		f := base
		if status != "" {
			f.Status = status
		}
		res, err := api.FilterArticles(ctx, query.Params{
			Filter:     f,
			Sorting:    query.DefaultSorting(),
			Pagination: query.Pagination{PageNumber: 1, PageSize: 1},
		})
		return res.TotalCount, err
	}

	var (
		st      DashboardStats
		pending int
		running int
	)
	for _, c := range []struct {
		status domain.ArticleStatus
		dst    *int
	}{
		{"", &st.Total},
		{domain.StatusPending, &pending},
		{domain.StatusProcessing, &running},
		{domain.StatusPublished, &st.Published},
		{domain.StatusAwaitingApproval, &st.PendingApproval},
	} {
		n, err := count(c.status)
		if err != nil {
			return DashboardStats{}, err
		}
		*c.dst = n
	}
	st.InProgress = pending + running
	return st, nil
}
