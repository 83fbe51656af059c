package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"articledesk/internal/domain"
	api "articledesk/internal/http"
	h "articledesk/internal/http/handlers"
	"articledesk/internal/query"
	"articledesk/internal/repositories"
	"articledesk/internal/services"
	"articledesk/internal/session"

	"github.com/gin-gonic/gin"
)

type backend struct {
	srv      *httptest.Server
	requests atomic.Int32
	worker   services.ProcessingService
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := services.Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	articles := repositories.NewMemoryArticles()
	files := services.DiskFileStore{Dir: t.TempDir()}
	engine := api.NewRouter(nil, tokens, &h.Handlers{
		Auth:     services.AuthService{Users: repositories.NewMemoryUsers(), Tokens: tokens},
		Articles: services.ArticleService{Articles: articles, Files: files, MaxBytes: 1 << 20},
		Bindings: services.BindingService{Bindings: repositories.NewMemoryBindings()},
	})

	b := &backend{worker: services.ProcessingService{Articles: articles, Files: files}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		engine.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) client(t *testing.T, username, role string) *Client {
	t.Helper()
	c := New(b.srv.URL+"/api", session.NewProvider(&session.MemoryTokenStore{}))
	if _, err := c.Register(context.Background(), username, "secret1", role); err != nil {
		t.Fatalf("Register %s: %v", username, err)
	}
	return c
}

func TestReviewScenarioEndToEnd(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	author := b.client(t, "alice", "VOLUNTEER")
	moderator := b.client(t, "mod", "MILITARY")

	if id, ok := moderator.Identity(); !ok || id.Role != domain.RoleAdmin {
		t.Fatalf("moderator identity = %+v", id)
	}
	if _, err := moderator.UploadArticle(ctx, "x.pdf", strings.NewReader("%PDF")); !domain.IsForbidden(err) {
		t.Fatalf("moderator upload: expected forbidden, got %v", err)
	}

	a, err := author.UploadArticle(ctx, "study.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("UploadArticle: %v", err)
	}
	if a.Status != domain.StatusPending {
		t.Fatalf("status = %s", a.Status)
	}
	if _, err := b.worker.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	before := b.requests.Load()
	if _, err := author.UpdateTitle(ctx, a.ID, "ab"); !domain.IsValidation(err) {
		t.Fatalf("short title: expected validation, got %v", err)
	}
	if _, err := moderator.Reject(ctx, a.ID, "   "); !domain.IsValidation(err) {
		t.Fatalf("blank reason: expected validation, got %v", err)
	}
	if n := b.requests.Load(); n != before {
		t.Fatalf("invalid input reached the backend (%d requests)", n-before)
	}

	if _, err := author.UpdateTitle(ctx, a.ID, "Field study"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	rejected, err := moderator.Reject(ctx, a.ID, "insufficient detail")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected || *rejected.ModeratorID == "" || *rejected.RejectionReason != "insufficient detail" {
		t.Fatalf("rejected = %+v", rejected)
	}

	_, err = moderator.Publish(ctx, a.ID)
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindConflict || !domain.IsConflict(err) {
		t.Fatalf("publish after reject: expected conflict, got %v", err)
	}
	again, err := author.GetArticle(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if again.Status != domain.StatusRejected || again.PublishedAt != nil || again.DisplayTitle() != "Field study" {
		t.Fatalf("article changed by failed publish: %+v", again)
	}

	page, err := moderator.FilterArticles(ctx, query.Params{Filter: query.Filter{Status: domain.StatusRejected}})
	if err != nil || page.TotalCount != 1 {
		t.Fatalf("FilterArticles = %+v, %v", page, err)
	}
	pdf, err := author.ArticleReport(ctx, a.ID)
	if err != nil || !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("ArticleReport: %v", err)
	}
}

func TestBindingCalls(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c := b.client(t, "alice", "VOLUNTEER")

	if _, err := c.CreateBinding(ctx, "nope"); !domain.IsValidation(err) {
		t.Fatalf("bad email: expected validation, got %v", err)
	}
	if _, err := c.GetBinding(ctx); !domain.IsNotFound(err) {
		t.Fatalf("get before create: expected not found, got %v", err)
	}
	if _, err := c.CreateBinding(ctx, "a@b.io"); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}
	if _, err := c.CreateBinding(ctx, "a@b.io"); !domain.IsConflict(err) {
		t.Fatalf("second create: expected conflict, got %v", err)
	}
	if bnd, err := c.UpdateBinding(ctx, "c@d.io"); err != nil || bnd.Email != "c@d.io" {
		t.Fatalf("UpdateBinding = %+v, %v", bnd, err)
	}
	if err := c.DeleteBinding(ctx); err != nil {
		t.Fatalf("DeleteBinding: %v", err)
	}
	if err := c.DeleteBinding(ctx); !domain.IsNotFound(err) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestLoginAndUnauthorized(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	b.client(t, "alice", "VOLUNTEER")

	c := New(b.srv.URL+"/api", session.NewProvider(&session.MemoryTokenStore{}))
	if _, err := c.Login(ctx, "alice", "wrong"); !domain.IsUnauthorized(err) {
		t.Fatalf("bad password: expected unauthorized, got %v", err)
	}
	if _, err := c.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// a token the backend cannot verify drops the session
	forged := New(b.srv.URL+"/api", session.NewProvider(&session.MemoryTokenStore{}))
	other := services.Tokens{Secret: []byte("other-secret")}
	tok, _ := other.Issue(domain.Identity{ID: "x", Username: "x", Role: domain.RoleUser})
	if _, err := forged.Session.SignIn(tok); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := forged.GetBinding(ctx); !domain.IsUnauthorized(err) {
		t.Fatalf("forged token: expected unauthorized, got %v", err)
	}
	if _, ok := forged.Identity(); ok {
		t.Fatalf("session should be cleared after 401")
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url+"/api", session.NewProvider(&session.MemoryTokenStore{}))
	_, err := c.Login(context.Background(), "alice", "secret1")
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
