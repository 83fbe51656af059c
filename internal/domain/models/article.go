package models

import (
	"strings"
	"time"

	"articledesk/internal/domain"
)

// Article is an uploaded document tracked through its review lifecycle.
type Article struct {
	ID                  string               `json:"id"`
	UserID              string               `json:"userId"`
	ModeratorID         *string              `json:"moderatorId,omitempty"`
	FileName            string               `json:"fileName"`
	Title               *string              `json:"title,omitempty"`
	Status              domain.ArticleStatus `json:"status"`
	StoragePath         *string              `json:"storagePath,omitempty"`
	RejectionReason     *string              `json:"rejectionReason,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	ProcessingStartedAt *time.Time           `json:"processingStartedAt,omitempty"`
	ProcessedAt         *time.Time           `json:"processedAt,omitempty"`
	PublishedAt         *time.Time           `json:"publishedAt,omitempty"`
}

// DisplayTitle returns the title, falling back to the file name.
func (a Article) DisplayTitle() string {
	if a.Title != nil && strings.TrimSpace(*a.Title) != "" {
		return *a.Title
	}
	return a.FileName
}

// Clone returns a copy that shares no pointers with a.
func (a Article) Clone() Article {
	out := a
	out.ModeratorID = cloneString(a.ModeratorID)
	out.Title = cloneString(a.Title)
	out.StoragePath = cloneString(a.StoragePath)
	out.RejectionReason = cloneString(a.RejectionReason)
	out.ProcessingStartedAt = cloneTime(a.ProcessingStartedAt)
	out.ProcessedAt = cloneTime(a.ProcessedAt)
	out.PublishedAt = cloneTime(a.PublishedAt)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
