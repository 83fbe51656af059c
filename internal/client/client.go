// Package client talks to the articledesk API on behalf of one signed-in
// identity and keeps view state consistent with what the backend accepted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/session"
)

// Client is safe for concurrent use. It never retries a request.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session *session.Provider
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, sess *session.Provider) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Session: sess,
	}
}

// Identity is the current identity snapshot.
func (c *Client) Identity() (domain.Identity, bool) {
	return c.Session.Current()
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Identity{}, domain.ValidationError{Msg: "username and password are required"}
	}
	var out tokenResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return domain.Identity{}, err
	}
	return c.Session.SignIn(out.Token)
}

// Register accepts role MILITARY (moderator) or VOLUNTEER (author).
func (c *Client) Register(ctx context.Context, username, password, role string) (domain.Identity, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Identity{}, domain.ValidationError{Msg: "username and password are required"}
	}
	if role != "MILITARY" && role != "VOLUNTEER" {
		return domain.Identity{}, domain.ValidationError{Field: "role", Msg: "must be MILITARY or VOLUNTEER"}
	}
	var out tokenResponse
	body := map[string]string{"username": username, "password": password, "role": role}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return domain.Identity{}, err
	}
	return c.Session.SignIn(out.Token)
}

func (c *Client) Logout() error {
	return c.Session.Logout()
}

// doJSON sends in as JSON (if non-nil) and decodes a 2xx body into out
// (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := responseError(resp)
		if e.Kind == KindUnauthorized && req.Header.Get("Authorization") != "" {
			// the backend no longer accepts the stored credential
			_ = c.Session.Logout()
		}
		return e
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if b, ok := out.(*[]byte); ok {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return transient(err)
		}
		*b = raw
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transient(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
