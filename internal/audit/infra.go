package audit

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	ip         TEXT NOT NULL,
	action     TEXT NOT NULL,
	info       TEXT NOT NULL DEFAULT ''
)`

type pgRepo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &pgRepo{db: db}
}

// EnsureSchema creates the audit table if it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (r *pgRepo) Insert(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, created_at, ip, action, info)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.At, e.IP, string(e.Action), e.Info)
	return err
}
