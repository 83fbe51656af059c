package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"articledesk/internal/client"
	"articledesk/internal/domain"
	"articledesk/internal/query"
	"articledesk/internal/review"

	"github.com/spf13/pflag"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{
	"login", "register", "logout", "whoami",
	"dashboard", "list", "show", "upload", "edit-title", "publish", "reject", "report",
	"binding", "open",
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":      {"sign in: login <username> <password>", cmdLogin},
		"register":   {"create an account: register <username> <password> <MILITARY|VOLUNTEER>", cmdRegister},
		"logout":     {"forget the stored session", cmdLogout},
		"whoami":     {"show the current identity", cmdWhoami},
		"dashboard":  {"moderators see the approval queue, authors see their own articles", cmdDashboard},
		"list":       {"list articles (filter, sort and page flags)", cmdList},
		"show":       {"show an article and the actions you may take: show <id>", cmdShow},
		"upload":     {"upload a document: upload <file>", cmdUpload},
		"edit-title": {"retitle your article while it awaits approval: edit-title <id> <title>", cmdEditTitle},
		"publish":    {"publish an article awaiting approval: publish <id>", cmdPublish},
		"reject":     {"reject an article awaiting approval: reject <id> <reason>", cmdReject},
		"report":     {"save the review report PDF: report <id> [file]", cmdReport},
		"binding":    {"manage your notification email: binding get|set|update|delete [email]", cmdBinding},
		"open":       {"resolve a client route as the dashboard would: open <path>", cmdOpen},
	}
}

func expectArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return domain.ValidationError{Msg: "usage: articlectl " + usage}
	}
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 2, "login <username> <password>"); err != nil {
		return err
	}
	id, err := a.client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return a.printIdentity(id)
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 3, "register <username> <password> <MILITARY|VOLUNTEER>"); err != nil {
		return err
	}
	id, err := a.client.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	return a.printIdentity(id)
}

func cmdLogout(_ context.Context, a *app, _ []string) error {
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	if _, err := a.enter("/profile"); err != nil {
		return err
	}
	id, _ := a.client.Identity()
	return a.printIdentity(id)
}

func cmdList(ctx context.Context, a *app, args []string) error {
	if _, err := a.enter("/articles"); err != nil {
		return err
	}
	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	status := flagSet.String("status", "", "only this status")
	mine := flagSet.Bool("mine", false, "only my articles")
	moderator := flagSet.String("moderator", "", "only articles acted on by this moderator id")
	title := flagSet.String("title", "", "title contains")
	from := flagSet.String("from", "", "created at or after (YYYY-MM-DD or RFC 3339)")
	to := flagSet.String("to", "", "created at or before (YYYY-MM-DD or RFC 3339)")
	sortBy := flagSet.String("sort", "", "CreatedAt, Title or Status")
	asc := flagSet.Bool("asc", false, "ascending order")
	page := flagSet.Int("page", 1, "page number")
	size := flagSet.Int("size", query.DefaultPageSize, "page size")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	v := url.Values{}
	set := func(k, val string) {
		if strings.TrimSpace(val) != "" {
			v.Set(k, val)
		}
	}
	set("status", strings.ToUpper(*status))
	set("moderatorId", *moderator)
	set("titleQuery", *title)
	set("createdAtFrom", *from)
	set("createdAtTo", *to)
	set("sortBy", *sortBy)
	if *sortBy != "" || *asc {
		v.Set("isDescending", fmt.Sprint(!*asc))
	}
	v.Set("pageNumber", fmt.Sprint(*page))
	v.Set("pageSize", fmt.Sprint(*size))
	if *mine {
		id, _ := a.client.Identity()
		v.Set("userId", id.ID)
	}

	p, err := query.ParseValues(v)
	if err != nil {
		return err
	}
	view := client.NewListView(a.client)
	if err := view.Load(ctx, p); err != nil {
		return err
	}
	res, _ := view.Page()
	return a.printPage(res)
}

// cmdDashboard prints the headline counts, then what the signed-in role
// works on first: the approval queue for moderators, the author's own
// uploads otherwise.
func cmdDashboard(ctx context.Context, a *app, args []string) error {
	if _, err := a.enter("/dashboard"); err != nil {
		return err
	}
	id, _ := a.client.Identity()
	var base query.Filter
	if !review.CanViewAdminQueue(id) {
		base.UserID = id.ID
	}
	stats, err := client.LoadDashboardStats(ctx, a.client, base)
	if err != nil {
		return err
	}

	p := query.Params{Filter: base}
	if review.CanViewAdminQueue(id) {
		p.Filter.Status = domain.StatusAwaitingApproval
	}
	p, err = p.Normalize()
	if err != nil {
		return err
	}
	view := client.NewListView(a.client)
	if err := view.Load(ctx, p); err != nil {
		return err
	}
	res, _ := view.Page()
	return a.printDashboard(stats, res)
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 1, "show <id>"); err != nil {
		return err
	}
	params, err := a.enter("/articles/" + url.PathEscape(args[0]))
	if err != nil {
		return err
	}
	view := client.NewArticleView(a.client, a.client.Session)
	if err := view.Load(ctx, params["id"]); err != nil {
		return err
	}
	return a.printArticleState(view.State())
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 1, "upload <file>"); err != nil {
		return err
	}
	if _, err := a.enter("/articles/upload"); err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	art, err := a.client.UploadArticle(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	return a.printArticle(art)
}

// transition loads the article into a view and submits through it, so the
// policy check, busy flag and conflict refresh all apply.
func (a *app) transition(ctx context.Context, id string, submit func(*client.ArticleView) error) error {
	params, err := a.enter("/articles/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	view := client.NewArticleView(a.client, a.client.Session)
	if err := view.Load(ctx, params["id"]); err != nil {
		return err
	}
	if err := submit(view); err != nil {
		if domain.IsConflict(err) || domain.IsForbidden(err) {
			fmt.Fprintln(a.out, "the article changed; current state:")
			_ = a.printArticleState(view.State())
		}
		return err
	}
	return a.printArticleState(view.State())
}

func cmdEditTitle(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return domain.ValidationError{Msg: "usage: articlectl edit-title <id> <title>"}
	}
	title := strings.Join(args[1:], " ")
	return a.transition(ctx, args[0], func(v *client.ArticleView) error { return v.EditTitle(ctx, title) })
}

func cmdPublish(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 1, "publish <id>"); err != nil {
		return err
	}
	return a.transition(ctx, args[0], func(v *client.ArticleView) error { return v.Publish(ctx) })
}

func cmdReject(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return domain.ValidationError{Msg: "usage: articlectl reject <id> <reason>"}
	}
	reason := strings.Join(args[1:], " ")
	return a.transition(ctx, args[0], func(v *client.ArticleView) error { return v.Reject(ctx, reason) })
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return domain.ValidationError{Msg: "usage: articlectl report <id> [file]"}
	}
	params, err := a.enter("/articles/" + url.PathEscape(args[0]))
	if err != nil {
		return err
	}
	pdf, err := a.client.ArticleReport(ctx, params["id"])
	if err != nil {
		return err
	}
	dest := "review-" + args[0] + ".pdf"
	if len(args) == 2 {
		dest = args[1]
	}
	if err := os.WriteFile(dest, pdf, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", dest, len(pdf))
	return nil
}

func cmdBinding(ctx context.Context, a *app, args []string) error {
	if _, err := a.enter("/profile"); err != nil {
		return err
	}
	if len(args) == 0 {
		return domain.ValidationError{Msg: "usage: articlectl binding get|set|update|delete [email]"}
	}
	switch args[0] {
	case "get":
		b, err := a.client.GetBinding(ctx)
		if err != nil {
			return err
		}
		return a.printBinding(b)
	case "set", "update":
		if err := expectArgs(args[1:], 1, "binding "+args[0]+" <email>"); err != nil {
			return err
		}
		write := a.client.CreateBinding
		if args[0] == "update" {
			write = a.client.UpdateBinding
		}
		b, err := write(ctx, args[1])
		if err != nil {
			return err
		}
		return a.printBinding(b)
	case "delete":
		if err := a.client.DeleteBinding(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "binding deleted")
		return nil
	}
	return fmt.Errorf("unknown binding action %q", args[0])
}

func cmdOpen(ctx context.Context, a *app, args []string) error {
	if err := expectArgs(args, 1, "open <path>"); err != nil {
		return err
	}
	params, err := a.enter(args[0])
	if err != nil {
		return err
	}
	switch {
	case params["id"] != "":
		return cmdShow(ctx, a, []string{params["id"]})
	case strings.Trim(args[0], "/") == "dashboard":
		return cmdDashboard(ctx, a, nil)
	case strings.Trim(args[0], "/") == "articles":
		return cmdList(ctx, a, nil)
	case strings.Trim(args[0], "/") == "profile":
		return cmdWhoami(ctx, a, nil)
	}
	fmt.Fprintf(a.out, "%s: allowed\n", args[0])
	return nil
}
