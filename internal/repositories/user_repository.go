package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "articledesk/internal/config"
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, domain.InternalError{Msg: "database not connected"}
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt.UTC(),
	); err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "user", Msg: "username already taken", Err: err}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername matches case-insensitively through the column collation.
func (r UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	db, err := r.db()
	if err != nil {
		return models.User{}, err
	}
	var (
		u    models.User
		role string
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ? LIMIT 1`,
		strings.TrimSpace(username),
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}
