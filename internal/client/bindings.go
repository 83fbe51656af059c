package client

import (
	"context"
	"net/http"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

func (c *Client) GetBinding(ctx context.Context) (models.Binding, error) {
	var b models.Binding
	err := c.doJSON(ctx, http.MethodGet, "/bindings", nil, &b)
	return b, err
}

func (c *Client) CreateBinding(ctx context.Context, email string) (models.Binding, error) {
	return c.writeBinding(ctx, http.MethodPost, email)
}

func (c *Client) UpdateBinding(ctx context.Context, email string) (models.Binding, error) {
	return c.writeBinding(ctx, http.MethodPut, email)
}

func (c *Client) DeleteBinding(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/bindings", nil, nil)
}

func (c *Client) writeBinding(ctx context.Context, method, email string) (models.Binding, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return models.Binding{}, err
	}
	var b models.Binding
	err := c.doJSON(ctx, method, "/bindings", map[string]string{"email": strings.TrimSpace(email)}, &b)
	return b, err
}
