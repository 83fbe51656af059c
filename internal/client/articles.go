package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/query"
	"articledesk/internal/review"
)

// UploadArticle sends the document as multipart field "file".
func (c *Client) UploadArticle(ctx context.Context, fileName string, r io.Reader) (models.Article, error) {
	id, _ := c.Identity()
	if !review.CanUpload(id) {
		return models.Article{}, domain.ForbiddenError{Action: string(review.ActionUpload), Msg: "only authors can upload articles"}
	}
	if strings.TrimSpace(fileName) == "" {
		return models.Article{}, domain.ValidationError{Field: "file", Msg: "file name is required"}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile("file", fileName)
		if err == nil {
			_, err = io.Copy(fw, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/articles/upload", pr)
	if err != nil {
		pr.Close()
		return models.Article{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var a models.Article
	if err := c.send(req, &a); err != nil {
		pr.Close()
		return models.Article{}, err
	}
	return a, nil
}

// UpdateTitle validates locally and issues no request for an invalid
// title.
func (c *Client) UpdateTitle(ctx context.Context, articleID, title string) (models.Article, error) {
	if err := review.ValidateTitle(title); err != nil {
		return models.Article{}, err
	}
	var a models.Article
	body := map[string]string{"articleId": articleID, "title": strings.TrimSpace(title)}
	err := c.doJSON(ctx, http.MethodPut, "/articles", body, &a)
	return a, err
}

func (c *Client) Publish(ctx context.Context, articleID string) (models.Article, error) {
	var a models.Article
	err := c.doJSON(ctx, http.MethodPost, "/articles/publish", map[string]string{"articleId": articleID}, &a)
	return a, err
}

func (c *Client) Reject(ctx context.Context, articleID, reason string) (models.Article, error) {
	if err := review.ValidateReason(reason); err != nil {
		return models.Article{}, err
	}
	var a models.Article
	body := map[string]string{"articleId": articleID, "reason": strings.TrimSpace(reason)}
	err := c.doJSON(ctx, http.MethodPost, "/articles/reject", body, &a)
	return a, err
}

func (c *Client) GetArticle(ctx context.Context, articleID string) (models.Article, error) {
	if strings.TrimSpace(articleID) == "" {
		return models.Article{}, domain.ValidationError{Field: "articleId", Msg: "is required"}
	}
	var a models.Article
	err := c.doJSON(ctx, http.MethodGet, "/articles/"+url.PathEscape(articleID), nil, &a)
	return a, err
}

// FilterArticles normalizes p before sending it, so bad parameters fail
// without a request.
func (c *Client) FilterArticles(ctx context.Context, p query.Params) (query.PagedResult[models.Article], error) {
	var out query.PagedResult[models.Article]
	p, err := p.Normalize()
	if err != nil {
		return out, err
	}
	err = c.doJSON(ctx, http.MethodGet, "/articles/filter?"+p.Values().Encode(), nil, &out)
	return out, err
}

// ArticleReport downloads the review summary PDF.
func (c *Client) ArticleReport(ctx context.Context, articleID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/articles/%s/report", url.PathEscape(articleID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	var pdf []byte
	if err := c.send(req, &pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}
