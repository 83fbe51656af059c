package domain

import (
	"fmt"
	"strings"
)

// Role is the coarse permission class carried by an identity.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole accepts the canonical names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", ValidationError{Field: "role", Msg: fmt.Sprintf("unknown role %q", s)}
}

// Identity is the decoded representation of the logged-in actor. The zero
// value is the anonymous identity and is denied every action.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) Anonymous() bool { return i.ID == "" }

func (i Identity) IsAdmin() bool { return !i.Anonymous() && i.Role == RoleAdmin }

func (i Identity) IsUser() bool { return !i.Anonymous() && i.Role == RoleUser }

// ArticleStatus is the lifecycle state of an article.
type ArticleStatus string

const (
	StatusPending          ArticleStatus = "PENDING"
	StatusProcessing       ArticleStatus = "PROCESSING"
	StatusAwaitingApproval ArticleStatus = "AWAITING_APPROVAL"
	StatusPublished        ArticleStatus = "PUBLISHED"
	StatusRejected         ArticleStatus = "REJECTED"
	StatusFailed           ArticleStatus = "FAILED"
)

// ArticleStatuses lists every status in lifecycle order.
var ArticleStatuses = []ArticleStatus{
	StatusPending,
	StatusProcessing,
	StatusAwaitingApproval,
	StatusPublished,
	StatusRejected,
	StatusFailed,
}

func ParseArticleStatus(s string) (ArticleStatus, error) {
	want := ArticleStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range ArticleStatuses {
		if st == want {
			return st, nil
		}
	}
	return "", ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", s)}
}

func (s ArticleStatus) Valid() bool {
	_, err := ParseArticleStatus(string(s))
	return err == nil
}

// Terminal reports whether no transition leaves s.
func (s ArticleStatus) Terminal() bool {
	switch s {
	case StatusPublished, StatusRejected, StatusFailed:
		return true
	}
	return false
}

// CarriesReason reports whether articles in s must have a rejection reason.
func (s ArticleStatus) CarriesReason() bool {
	return s == StatusRejected || s == StatusFailed
}
