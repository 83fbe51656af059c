package models

import (
	"time"

	"articledesk/internal/domain"
)

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (u User) Identity() domain.Identity {
	return domain.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
