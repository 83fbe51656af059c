package handlers

import (
	"net/http"

	"articledesk/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type bindingRequest struct {
	Email string `json:"email"`
}

// GET /api/bindings
func (h *Handlers) GetBinding(c *gin.Context) {
	b, err := h.bindings(c).Get(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bindings
func (h *Handlers) CreateBinding(c *gin.Context) {
	var req bindingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bindings(c).Create(c.Request.Context(), middleware.GetIdentity(c), req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// PUT /api/bindings
func (h *Handlers) UpdateBinding(c *gin.Context) {
	var req bindingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bindings(c).Update(c.Request.Context(), middleware.GetIdentity(c), req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/bindings
func (h *Handlers) DeleteBinding(c *gin.Context) {
	if err := h.bindings(c).Delete(c.Request.Context(), middleware.GetIdentity(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
