package query

import (
	"strings"
)

// SQL is a rendered article query for the articles table. Where and
// OrderBy carry no leading keyword; Args are positional for '?' markers.
type SQL struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// displayTitleExpr mirrors Article.DisplayTitle: a NULL or blank title
// falls back to the file name.
const displayTitleExpr = "COALESCE(IF(TRIM(title) = '', NULL, title), file_name)"

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortTitle:     displayTitleExpr,
	SortStatus:    "status",
}

// BuildSQL renders p within scope. p must already be normalized.
func BuildSQL(p Params, scope Scope) SQL {
	var (
		conds []string
		args  []any
	)
	if !scope.All {
		conds = append(conds, "(status = ? OR user_id = ?)")
		args = append(args, "PUBLISHED", scope.ViewerID)
	}

	f := p.Filter
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ModeratorID != "" {
		conds = append(conds, "moderator_id = ?")
		args = append(args, f.ModeratorID)
	}
	if q := strings.TrimSpace(f.TitleQuery); q != "" {
		conds = append(conds, "LOWER("+displayTitleExpr+") LIKE ? ESCAPE '\\\\'")
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	if f.CreatedAtFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.CreatedAtFrom.UTC())
	}
	if f.CreatedAtTo != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.CreatedAtTo.UTC())
	}

	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	col, ok := sortColumns[p.Sorting.SortBy]
	if !ok {
		col = sortColumns[SortCreatedAt]
	}
	dir := "ASC"
	if p.Sorting.IsDescending {
		dir = "DESC"
	}

	return SQL{
		Where:   where,
		Args:    args,
		OrderBy: col + " " + dir + ", id ASC",
		Limit:   p.Pagination.PageSize,
		Offset:  p.Pagination.Offset(),
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
