package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "articledesk/internal/config"
	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
)

// BindingRepository stores the email bound to each identity; one row per
// identity at most.
type BindingRepository struct {
	DB *sql.DB
}

func (r BindingRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, domain.InternalError{Msg: "database not connected"}
}

func (r BindingRepository) Get(ctx context.Context, identityID string) (models.Binding, error) {
	db, err := r.db()
	if err != nil {
		return models.Binding{}, err
	}
	var b models.Binding
	err = db.QueryRowContext(ctx,
		`SELECT identity_id, email FROM bindings WHERE identity_id = ? LIMIT 1`, identityID,
	).Scan(&b.IdentityID, &b.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Binding{}, domain.NotFoundError{Resource: "binding", Err: err}
	}
	if err != nil {
		return models.Binding{}, fmt.Errorf("select binding: %w", err)
	}
	return b, nil
}

func (r BindingRepository) Create(ctx context.Context, b models.Binding) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO bindings (identity_id, email) VALUES (?, ?)`, b.IdentityID, b.Email,
	); err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "binding", Msg: "binding already exists", Err: err}
		}
		return fmt.Errorf("insert binding: %w", err)
	}
	return nil
}

func (r BindingRepository) Update(ctx context.Context, b models.Binding) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bindings SET email = ? WHERE identity_id = ?`, b.Email, b.IdentityID)
	if err != nil {
		return fmt.Errorf("update binding: %w", err)
	}
	return requireRow(res, "binding")
}

func (r BindingRepository) Delete(ctx context.Context, identityID string) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM bindings WHERE identity_id = ?`, identityID)
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	return requireRow(res, "binding")
}

func requireRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", resource, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
