package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"articledesk/internal/domain"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 250
)

// ValidateTitle checks the edit-title bounds, counted in runes after trimming.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < MinTitleLength || n > MaxTitleLength {
		return domain.ValidationError{
			Field: "title",
			Msg:   fmt.Sprintf("must be between %d and %d characters", MinTitleLength, MaxTitleLength),
		}
	}
	return nil
}

func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ValidationError{Field: "reason", Msg: "rejection reason is required"}
	}
	return nil
}
