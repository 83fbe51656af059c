package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReportService renders the one-page review summary of an article.
type ReportService struct {
	Articles  ArticleService
	RequestID string
}

// Generate returns the PDF bytes and a download file name. It sees exactly
// what Get would.
func (s ReportService) Generate(ctx context.Context, by domain.Identity, articleID string) ([]byte, string, error) {
	a, err := s.Articles.Get(ctx, by, articleID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "reports", "generate", "article_id", a.ID)
	return buildReviewReportPDF(a)
}

func buildReviewReportPDF(a models.Article) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Review report", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "REVIEW REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Title        : %s", utils.Truncate(a.DisplayTitle(), 80)),
		fmt.Sprintf("File         : %s", a.FileName),
		fmt.Sprintf("Article ID   : %s", a.ID),
		fmt.Sprintf("Author       : %s", a.UserID),
		fmt.Sprintf("Status       : %s", a.Status),
		fmt.Sprintf("Moderator    : %s", deref(a.ModeratorID, "-")),
		fmt.Sprintf("Uploaded     : %s", utils.FormatDateTime(&a.CreatedAt)),
		fmt.Sprintf("Processing   : %s", utils.FormatDateTime(a.ProcessingStartedAt)),
		fmt.Sprintf("Processed    : %s", utils.FormatDateTime(a.ProcessedAt)),
		fmt.Sprintf("Published    : %s", utils.FormatDateTime(a.PublishedAt)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}

	if a.RejectionReason != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Reason")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(*a.RejectionReason), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("review-%s.pdf", shortID(a.ID)), nil
}

func deref(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
