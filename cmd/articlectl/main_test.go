package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"articledesk/internal/guard"
	api "articledesk/internal/http"
	h "articledesk/internal/http/handlers"
	"articledesk/internal/repositories"
	"articledesk/internal/services"

	"github.com/gin-gonic/gin"
)

type harness struct {
	t      *testing.T
	apiURL string
	home   string
	worker services.ProcessingService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := services.Tokens{Secret: []byte("cli-secret"), TTL: time.Hour}
	articles := repositories.NewMemoryArticles()
	files := services.DiskFileStore{Dir: t.TempDir()}
	srv := httptest.NewServer(api.NewRouter(nil, tokens, &h.Handlers{
		Auth:     services.AuthService{Users: repositories.NewMemoryUsers(), Tokens: tokens},
		Articles: services.ArticleService{Articles: articles, Files: files, MaxBytes: 1 << 20},
		Bindings: services.BindingService{Bindings: repositories.NewMemoryBindings()},
	}))
	t.Cleanup(srv.Close)
	return &harness{t: t, apiURL: srv.URL + "/api", home: t.TempDir(), worker: services.ProcessingService{Articles: articles, Files: files}}
}

// as runs articlectl with the session kept in the named profile.
func (hn *harness) as(profile string, args ...string) (string, error) {
	var out bytes.Buffer
	full := append([]string{"--api", hn.apiURL, "--token-file", filepath.Join(hn.home, profile+".token")}, args...)
	err := run(context.Background(), full, &out)
	return out.String(), err
}

func TestCLIReviewFlow(t *testing.T) {
	hn := newHarness(t)
	if _, err := hn.as("alice", "register", "alice", "secret1", "VOLUNTEER"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := hn.as("mod", "register", "mod", "secret1", "MILITARY"); err != nil {
		t.Fatalf("register mod: %v", err)
	}

	doc := filepath.Join(t.TempDir(), "essay.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4 essay"), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	_, err := hn.as("mod", "upload", doc)
	var redirect redirectError
	if !errors.As(err, &redirect) || redirect.to != guard.DashboardPath {
		t.Fatalf("moderator upload: expected dashboard redirect, got %v", err)
	}

	out, err := hn.as("alice", "--json", "upload", doc)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	id := jsonField(t, out, "id")
	if _, err := hn.worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	for _, profile := range []string{"mod", "alice"} {
		out, err := hn.as(profile, "dashboard")
		if err != nil || !strings.Contains(out, "essay.pdf") || !strings.Contains(out, "(1 articles)") {
			t.Fatalf("%s dashboard: %v\n%s", profile, err, out)
		}
		if !strings.Contains(out, "total 1  in progress 0  published 0  pending approval 1") {
			t.Fatalf("%s dashboard counts:\n%s", profile, out)
		}
	}

	out, err = hn.as("alice", "show", id)
	if err != nil || !strings.Contains(out, "AWAITING_APPROVAL") || !strings.Contains(out, "editTitle") {
		t.Fatalf("show as author: %v\n%s", err, out)
	}
	if _, err := hn.as("alice", "edit-title", id, "A", "Field", "Essay"); err != nil {
		t.Fatalf("edit-title: %v", err)
	}
	out, err = hn.as("mod", "reject", id, "needs", "sources")
	if err != nil || !strings.Contains(out, "REJECTED") || !strings.Contains(out, "needs sources") {
		t.Fatalf("reject: %v\n%s", err, out)
	}
	if _, err := hn.as("mod", "publish", id); err == nil {
		t.Fatalf("publish after reject should fail")
	}

	out, err = hn.as("mod", "list", "--status", "rejected")
	if err != nil || !strings.Contains(out, "A Field Essay") || !strings.Contains(out, "(1 articles)") {
		t.Fatalf("list: %v\n%s", err, out)
	}
}

func TestCLIRequiresSession(t *testing.T) {
	hn := newHarness(t)
	_, err := hn.as("nobody", "list")
	var redirect redirectError
	if !errors.As(err, &redirect) || redirect.to != guard.LoginPath {
		t.Fatalf("expected login redirect, got %v", err)
	}
}

func TestCLIBinding(t *testing.T) {
	hn := newHarness(t)
	if _, err := hn.as("alice", "register", "alice", "secret1", "VOLUNTEER"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := hn.as("alice", "binding", "set", "alice@example.org"); err != nil {
		t.Fatalf("binding set: %v", err)
	}
	out, err := hn.as("alice", "binding", "get")
	if err != nil || !strings.Contains(out, "alice@example.org") {
		t.Fatalf("binding get: %v %s", err, out)
	}
	if _, err := hn.as("alice", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := hn.as("alice", "binding", "get"); err == nil {
		t.Fatalf("binding after logout should redirect")
	}
}

func jsonField(t *testing.T, doc, key string) string {
	t.Helper()
	marker := `"` + key + `": "`
	i := strings.Index(doc, marker)
	if i < 0 {
		t.Fatalf("%s missing from %s", key, doc)
	}
	rest := doc[i+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}
