package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"articledesk/internal/domain"

	"github.com/gin-gonic/gin"
)

type stubVerifier map[string]domain.Identity

func (s stubVerifier) Verify(token string) (domain.Identity, error) {
	id, ok := s[token]
	if !ok {
		return domain.Identity{}, errors.New("bad token")
	}
	return id, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	v := stubVerifier{
		"admin-token": {ID: "m1", Role: domain.RoleAdmin},
		"user-token":  {ID: "u1", Role: domain.RoleUser},
	}
	r.GET("/me", Auth(v), func(c *gin.Context) {
		c.String(http.StatusOK, GetIdentity(c).ID)
	})
	r.GET("/queue", Auth(v), RequireRoles(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newEngine()
	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", w.Code)
	}
	if w := do(r, "/me", "forged"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", w.Code)
	}
	w := do(r, "/me", "user-token")
	if w.Code != http.StatusOK || w.Body.String() != "u1" {
		t.Fatalf("valid token: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRequireRoles(t *testing.T) {
	r := newEngine()
	if w := do(r, "/queue", "user-token"); w.Code != http.StatusForbidden {
		t.Fatalf("user on admin route: status %d", w.Code)
	}
	if w := do(r, "/queue", "admin-token"); w.Code != http.StatusOK {
		t.Fatalf("admin: status %d", w.Code)
	}
}
