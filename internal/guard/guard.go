// Package guard decides, before a view mounts, whether the current identity
// may enter a client route and where to send it otherwise.
package guard

import (
	"strings"

	"articledesk/internal/domain"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of a guard chain. Redirect is set when Allowed is
// false.
type Decision struct {
	Allowed  bool
	Redirect string
}

var allow = Decision{Allowed: true}

// Guard inspects one identity snapshot. ok is false when no session exists.
type Guard func(id domain.Identity, ok bool) Decision

// RequireAuth sends visitors without a session to the login view.
func RequireAuth() Guard {
	return func(_ domain.Identity, ok bool) Decision {
		if !ok {
			return Decision{Redirect: LoginPath}
		}
		return allow
	}
}

// RequireRole sends identities with another role to the dashboard.
func RequireRole(role domain.Role) Guard {
	return func(id domain.Identity, ok bool) Decision {
		if !ok || id.Role != role {
			return Decision{Redirect: DashboardPath}
		}
		return allow
	}
}

// IdentitySource is satisfied by *session.Provider.
type IdentitySource interface {
	Current() (domain.Identity, bool)
}

// Evaluate runs guards in order against a single snapshot; the first
// denial wins.
func Evaluate(src IdentitySource, guards ...Guard) Decision {
	id, ok := src.Current()
	for _, g := range guards {
		if d := g(id, ok); !d.Allowed {
			return d
		}
	}
	return allow
}

// Route is one client view with its guard chain. Pattern segments starting
// with ':' match any single segment.
type Route struct {
	Name    string
	Pattern string
	Guards  []Guard
}

// Routes is the client route surface, most specific first.
var Routes = []Route{
	{Name: "login", Pattern: "/login"},
	{Name: "register", Pattern: "/register"},
	{Name: "dashboard", Pattern: "/dashboard", Guards: []Guard{RequireAuth()}},
	{Name: "articles", Pattern: "/articles", Guards: []Guard{RequireAuth()}},
	{Name: "upload", Pattern: "/articles/upload", Guards: []Guard{RequireAuth(), RequireRole(domain.RoleUser)}},
	{Name: "article", Pattern: "/articles/:id", Guards: []Guard{RequireAuth()}},
	{Name: "profile", Pattern: "/profile", Guards: []Guard{RequireAuth()}},
}

// Match finds the route for path and its ':' parameters. Static routes win
// over parameterized ones.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	var (
		best   Route
		params map[string]string
		found  bool
		score  = -1
	)
	for _, r := range Routes {
		p, s, ok := match(split(r.Pattern), segs)
		if ok && s > score {
			best, params, found, score = r, p, true, s
		}
	}
	return best, params, found
}

// Resolve evaluates the guards of the route path maps to. The empty path
// and "/" redirect to the dashboard; unknown paths do too.
func Resolve(src IdentitySource, path string) (Route, map[string]string, Decision) {
	r, params, ok := Match(path)
	if !ok {
		return Route{}, nil, Decision{Redirect: DashboardPath}
	}
	return r, params, Evaluate(src, r.Guards...)
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match returns the params and the number of static segments matched.
func match(pattern, segs []string) (map[string]string, int, bool) {
	if len(pattern) != len(segs) {
		return nil, 0, false
	}
	params := map[string]string{}
	static := 0
	for i, p := range pattern {
		switch {
		case strings.HasPrefix(p, ":"):
			params[p[1:]] = segs[i]
		case p == segs[i]:
			static++
		default:
			return nil, 0, false
		}
	}
	return params, static, true
}
