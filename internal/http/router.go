package api

import (
	"log"
	stdhttp "net/http"

	"articledesk/internal/domain"
	h "articledesk/internal/http/handlers"
	"articledesk/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts every endpoint under /api. Article and binding routes
// require a bearer token verified by tokens.
func NewRouter(corsOrigins []string, tokens middleware.TokenVerifier, hs *h.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", hs.Login)
		auth.POST("/register", hs.Register)

		secured := api.Group("", middleware.Auth(tokens))

		// Articles
		articles := secured.Group("/articles")
		articles.GET("/filter", hs.FilterArticles)
		articles.GET("/:id", hs.GetArticle)
		articles.GET("/:id/report", hs.ArticleReport)
		articles.PUT("", hs.UpdateArticleTitle)
		articles.POST("/upload", middleware.RequireRoles(domain.RoleUser), hs.UploadArticle)
		articles.POST("/publish", middleware.RequireRoles(domain.RoleAdmin), hs.PublishArticle)
		articles.POST("/reject", middleware.RequireRoles(domain.RoleAdmin), hs.RejectArticle)

		// Bindings
		bindings := secured.Group("/bindings")
		bindings.GET("", hs.GetBinding)
		bindings.POST("", hs.CreateBinding)
		bindings.PUT("", hs.UpdateBinding)
		bindings.DELETE("", hs.DeleteBinding)
	}

	h.SetRouter(r)
	return r
}
