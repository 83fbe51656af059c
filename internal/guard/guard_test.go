package guard

import (
	"testing"

	"articledesk/internal/domain"
)

type fixedIdentity struct {
	id    domain.Identity
	ok    bool
	reads int
}

func (f *fixedIdentity) Current() (domain.Identity, bool) {
	f.reads++
	return f.id, f.ok
}

func TestResolve(t *testing.T) {
	user := &fixedIdentity{id: domain.Identity{ID: "u1", Role: domain.RoleUser}, ok: true}
	admin := &fixedIdentity{id: domain.Identity{ID: "m1", Role: domain.RoleAdmin}, ok: true}
	nobody := &fixedIdentity{}

	cases := []struct {
		name     string
		src      IdentitySource
		path     string
		route    string
		redirect string
	}{
		{"login is public", nobody, "/login", "login", ""},
		{"register is public", nobody, "/register", "register", ""},
		{"dashboard needs session", nobody, "/dashboard", "dashboard", LoginPath},
		{"dashboard with session", admin, "/dashboard", "dashboard", ""},
		{"upload for author", user, "/articles/upload", "upload", ""},
		{"upload for admin", admin, "/articles/upload", "upload", DashboardPath},
		{"upload without session goes to login first", nobody, "/articles/upload", "upload", LoginPath},
		{"article detail", admin, "/articles/42", "article", ""},
		{"trailing slash", user, "/profile/", "profile", ""},
		{"unknown path", user, "/admin", "", DashboardPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _, d := Resolve(tc.src, tc.path)
			if r.Name != tc.route {
				t.Fatalf("route = %q, want %q", r.Name, tc.route)
			}
			if tc.redirect == "" && !d.Allowed {
				t.Fatalf("expected access, got redirect %q", d.Redirect)
			}
			if tc.redirect != "" && (d.Allowed || d.Redirect != tc.redirect) {
				t.Fatalf("decision = %+v, want redirect %q", d, tc.redirect)
			}
		})
	}
}

func TestMatchParams(t *testing.T) {
	r, params, ok := Match("/articles/9b2e")
	if !ok || r.Name != "article" || params["id"] != "9b2e" {
		t.Fatalf("Match = %v %v %v", r.Name, params, ok)
	}
}

func TestEvaluateReadsOneSnapshot(t *testing.T) {
	src := &fixedIdentity{id: domain.Identity{ID: "u1", Role: domain.RoleUser}, ok: true}
	Evaluate(src, RequireAuth(), RequireRole(domain.RoleUser))
	if src.reads != 1 {
		t.Fatalf("identity read %d times per decision", src.reads)
	}
}
