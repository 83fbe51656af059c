package domain

import (
	"net/mail"
	"strings"
)

// ValidateEmail accepts a bare local@domain.tld address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return ValidationError{Field: "email", Msg: "must be a valid email address"}
	}
	return nil
}
