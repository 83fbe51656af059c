package review

import (
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

// CheckInvariants reports the first structural rule a stored article breaks.
func CheckInvariants(a models.Article) error {
	if !a.Status.Valid() {
		return domain.ValidationError{Field: "status", Msg: "unknown status " + string(a.Status)}
	}
	if a.ID == "" || a.UserID == "" || a.FileName == "" {
		return domain.ValidationError{Msg: "article id, userId and fileName are required"}
	}

	hasReason := a.RejectionReason != nil
	if hasReason != a.Status.CarriesReason() {
		return domain.ValidationError{Field: "rejectionReason", Msg: "must be set exactly when status is REJECTED or FAILED"}
	}

	published := a.Status == domain.StatusPublished
	if (a.PublishedAt != nil) != published {
		return domain.ValidationError{Field: "publishedAt", Msg: "must be set exactly when status is PUBLISHED"}
	}
	if a.PublishedAt != nil && a.ProcessedAt != nil && a.PublishedAt.Before(*a.ProcessedAt) {
		return domain.ValidationError{Field: "publishedAt", Msg: "precedes processedAt"}
	}

	switch a.Status {
	case domain.StatusPublished, domain.StatusRejected:
		if a.ModeratorID == nil {
			return domain.ValidationError{Field: "moderatorId", Msg: "required once moderated"}
		}
	case domain.StatusFailed:
	default:
		if a.ModeratorID != nil {
			return domain.ValidationError{Field: "moderatorId", Msg: "set before moderation"}
		}
	}
	return nil
}
