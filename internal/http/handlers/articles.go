package handlers

import (
	"fmt"
	"net/http"

	"articledesk/internal/domain"
	"articledesk/internal/http/middleware"
	"articledesk/internal/query"

	"github.com/gin-gonic/gin"
)

type updateTitleRequest struct {
	ArticleID string `json:"articleId"`
	Title     string `json:"title"`
}

type publishRequest struct {
	ArticleID string `json:"articleId"`
}

type rejectRequest struct {
	ArticleID string `json:"articleId"`
	Reason    string `json:"reason"`
}

// POST /api/articles/upload (multipart field "file")
func (h *Handlers) UploadArticle(c *gin.Context) {
	svc := h.articles(c)
	if svc.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, svc.MaxBytes+1<<20)
	}
	header, err := c.FormFile("file")
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "file", Msg: "multipart field \"file\" is required", Err: err})
		return
	}
	f, err := header.Open()
	if err != nil {
		RespondDomainError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	a, err := svc.Upload(c.Request.Context(), middleware.GetIdentity(c), header.Filename, f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// PUT /api/articles
func (h *Handlers) UpdateArticleTitle(c *gin.Context) {
	var req updateTitleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	a, err := h.articles(c).UpdateTitle(c.Request.Context(), middleware.GetIdentity(c), req.ArticleID, req.Title)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/articles/publish
func (h *Handlers) PublishArticle(c *gin.Context) {
	var req publishRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	a, err := h.articles(c).Publish(c.Request.Context(), middleware.GetIdentity(c), req.ArticleID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/articles/reject
func (h *Handlers) RejectArticle(c *gin.Context) {
	var req rejectRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	a, err := h.articles(c).Reject(c.Request.Context(), middleware.GetIdentity(c), req.ArticleID, req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GET /api/articles/:id
func (h *Handlers) GetArticle(c *gin.Context) {
	a, err := h.articles(c).Get(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GET /api/articles/filter
func (h *Handlers) FilterArticles(c *gin.Context) {
	p, err := query.ParseValues(c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.articles(c).Filter(c.Request.Context(), middleware.GetIdentity(c), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/articles/:id/report
func (h *Handlers) ArticleReport(c *gin.Context) {
	pdf, name, err := h.reports(c).Generate(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
