package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates an AuditRepository backed by Postgres. The
// server-side trail is unbounded; retention is an operational concern.
func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e entity.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_entries (action, target_id, message, actor, at) VALUES ($1, $2, $3, $4, $5)",
		e.Action, e.TargetID, e.Message, e.Actor, e.At,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) Recent(ctx context.Context, n int) ([]entity.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, action, target_id, message, actor, at FROM audit_entries ORDER BY id DESC LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var id int64
		if err := rows.Scan(&id, &e.Action, &e.TargetID, &e.Message, &e.Actor, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
