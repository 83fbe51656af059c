package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// QueryRower is satisfied by *sql.DB and *sql.Tx.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var tables = []struct {
	name string
	ddl  string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"articles", `CREATE TABLE IF NOT EXISTS articles (
		id                    CHAR(36)     NOT NULL PRIMARY KEY,
		user_id               CHAR(36)     NOT NULL,
		moderator_id          CHAR(36)     NULL,
		file_name             VARCHAR(255) NOT NULL,
		title                 VARCHAR(250) NULL,
		status                VARCHAR(32)  NOT NULL,
		storage_path          VARCHAR(512) NULL,
		rejection_reason      TEXT         NULL,
		created_at            DATETIME(6)  NOT NULL,
		processing_started_at DATETIME(6)  NULL,
		processed_at          DATETIME(6)  NULL,
		published_at          DATETIME(6)  NULL,
		KEY ix_articles_status_created (status, created_at),
		KEY ix_articles_user (user_id),
		KEY ix_articles_moderator (moderator_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bindings", `CREATE TABLE IF NOT EXISTS bindings (
		identity_id CHAR(36)     NOT NULL PRIMARY KEY,
		email       VARCHAR(320) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// TableNames lists the tables EnsureSchema manages.
func TableNames() []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.name)
	}
	return out
}

// EnsureSchema creates missing tables. Existing tables are left alone.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	log.Printf("[DB] action=ensure_schema msg=%d tables ready", len(tables))
	return nil
}

// HasTable reports whether table exists in the current schema.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// NullIfEmpty stores optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
