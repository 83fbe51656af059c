package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"articledesk/internal/client"
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
	"articledesk/internal/utils"

	"github.com/mattn/go-runewidth"
)

// titleWidth is the terminal cell budget for titles in listings.
const titleWidth = 48

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printIdentity(id domain.Identity) error {
	if a.json {
		return a.printJSON(id)
	}
	fmt.Fprintf(a.out, "%s (%s) id=%s\n", id.Username, id.Role, id.ID)
	return nil
}

func (a *app) printArticle(art models.Article) error {
	if a.json {
		return a.printJSON(art)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s\t%s\n", k, v) }
	row("id", art.ID)
	row("title", art.DisplayTitle())
	row("file", art.FileName)
	row("status", string(art.Status))
	row("author", art.UserID)
	if art.ModeratorID != nil {
		row("moderator", *art.ModeratorID)
	}
	if art.RejectionReason != nil {
		row("reason", *art.RejectionReason)
	}
	row("created", utils.FormatDateTime(&art.CreatedAt))
	if art.ProcessedAt != nil {
		row("processed", utils.FormatDateTime(art.ProcessedAt))
	}
	if art.PublishedAt != nil {
		row("published", utils.FormatDateTime(art.PublishedAt))
	}
	return tw.Flush()
}

func (a *app) printArticleState(st client.ArticleState) error {
	if a.json {
		return a.printJSON(struct {
			Article *models.Article `json:"article"`
			Actions []string        `json:"actions"`
		}{st.Article, actionNames(st)})
	}
	if st.Article == nil {
		fmt.Fprintln(a.out, "article not available")
		return nil
	}
	if err := a.printArticle(*st.Article); err != nil {
		return err
	}
	if names := actionNames(st); len(names) > 0 {
		fmt.Fprintf(a.out, "actions   %s\n", strings.Join(names, ", "))
	}
	return nil
}

func actionNames(st client.ArticleState) []string {
	out := make([]string, 0, len(st.Actions))
	for _, act := range st.Actions {
		out = append(out, string(act))
	}
	return out
}

func (a *app) printPage(res query.PagedResult[models.Article]) error {
	if a.json {
		return a.printJSON(res)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	// title goes last: tabwriter counts runes, not terminal cells
	fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tTITLE")
	for _, art := range res.Items {
		title := runewidth.Truncate(art.DisplayTitle(), titleWidth, "…")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", art.ID, art.Status, utils.FormatDateTime(&art.CreatedAt), title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d articles)\n", res.CurrentPage, res.TotalPages, res.TotalCount)
	return nil
}

func (a *app) printDashboard(st client.DashboardStats, res query.PagedResult[models.Article]) error {
	if a.json {
		return a.printJSON(struct {
			Stats client.DashboardStats             `json:"stats"`
			Page  query.PagedResult[models.Article] `json:"page"`
		}{st, res})
	}
	fmt.Fprintf(a.out, "total %d  in progress %d  published %d  pending approval %d\n\n",
		st.Total, st.InProgress, st.Published, st.PendingApproval)
	return a.printPage(res)
}

func (a *app) printBinding(b models.Binding) error {
	if a.json {
		return a.printJSON(b)
	}
	fmt.Fprintf(a.out, "notifications go to %s\n", b.Email)
	return nil
}
