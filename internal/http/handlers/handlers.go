// Package handlers exposes the article, binding and auth services over
// JSON.
package handlers

import (
	"articledesk/internal/http/middleware"
	"articledesk/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers holds the services the endpoints call. Each request works on a
// copy stamped with its request id.
type Handlers struct {
	Auth     services.AuthService
	Articles services.ArticleService
	Bindings services.BindingService
}

func (h *Handlers) auth(c *gin.Context) services.AuthService {
	s := h.Auth
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handlers) articles(c *gin.Context) services.ArticleService {
	s := h.Articles
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handlers) bindings(c *gin.Context) services.BindingService {
	s := h.Bindings
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h *Handlers) reports(c *gin.Context) services.ReportService {
	return services.ReportService{Articles: h.articles(c), RequestID: middleware.GetRequestID(c)}
}
