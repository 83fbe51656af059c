package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"articledesk/internal/domain"
)

const dateLayout = "2006-01-02"

// Values encodes p as the query string of GET /articles/filter. Unset
// filter fields are omitted.
func (p Params) Values() url.Values {
	v := url.Values{}
	f := p.Filter
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.UserID != "" {
		v.Set("userId", f.UserID)
	}
	if f.ModeratorID != "" {
		v.Set("moderatorId", f.ModeratorID)
	}
	if f.TitleQuery != "" {
		v.Set("titleQuery", f.TitleQuery)
	}
	if f.CreatedAtFrom != nil {
		v.Set("createdAtFrom", f.CreatedAtFrom.UTC().Format(time.RFC3339Nano))
	}
	if f.CreatedAtTo != nil {
		v.Set("createdAtTo", f.CreatedAtTo.UTC().Format(time.RFC3339Nano))
	}
	if p.Sorting.SortBy != "" {
		v.Set("sortBy", string(p.Sorting.SortBy))
		v.Set("isDescending", strconv.FormatBool(p.Sorting.IsDescending))
	}
	if p.Pagination.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(p.Pagination.PageNumber))
	}
	if p.Pagination.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.Pagination.PageSize))
	}
	return v
}

// ParseValues decodes a query string produced by Values (or typed by hand)
// and normalizes it.
func ParseValues(v url.Values) (Params, error) {
	var p Params

	if s := strings.TrimSpace(v.Get("status")); s != "" {
		st, err := domain.ParseArticleStatus(s)
		if err != nil {
			return p, err
		}
		p.Filter.Status = st
	}
	p.Filter.UserID = strings.TrimSpace(v.Get("userId"))
	p.Filter.ModeratorID = strings.TrimSpace(v.Get("moderatorId"))
	p.Filter.TitleQuery = v.Get("titleQuery")

	if s := strings.TrimSpace(v.Get("createdAtFrom")); s != "" {
		t, _, err := parseBound(s)
		if err != nil {
			return p, domain.ValidationError{Field: "createdAtFrom", Msg: "expected RFC 3339 or YYYY-MM-DD", Err: err}
		}
		p.Filter.CreatedAtFrom = &t
	}
	if s := strings.TrimSpace(v.Get("createdAtTo")); s != "" {
		t, dateOnly, err := parseBound(s)
		if err != nil {
			return p, domain.ValidationError{Field: "createdAtTo", Msg: "expected RFC 3339 or YYYY-MM-DD", Err: err}
		}
		if dateOnly {
			// inclusive upper bound covers the whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		p.Filter.CreatedAtTo = &t
	}

	if s := strings.TrimSpace(v.Get("sortBy")); s != "" {
		f, err := ParseSortField(s)
		if err != nil {
			return p, err
		}
		p.Sorting.SortBy = f
		p.Sorting.IsDescending = true
		if d := strings.TrimSpace(v.Get("isDescending")); d != "" {
			desc, err := strconv.ParseBool(d)
			if err != nil {
				return p, domain.ValidationError{Field: "isDescending", Msg: "expected true or false", Err: err}
			}
			p.Sorting.IsDescending = desc
		}
	}

	var err error
	if p.Pagination.PageNumber, err = intParam(v, "pageNumber"); err != nil {
		return p, err
	}
	if p.Pagination.PageSize, err = intParam(v, "pageSize"); err != nil {
		return p, err
	}
	return p.Normalize()
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}

func intParam(v url.Values, key string) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, domain.ValidationError{Field: key, Msg: "must be a positive integer", Err: err}
	}
	return n, nil
}
