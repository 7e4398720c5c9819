package store

import (
	"context"
	"database/sql"
	"fmt"

	"tournament-backend/internal/model"
)

// RecordAudit appends an audit entry; actorID may be nil for system actions.
func (q *Queries) RecordAudit(ctx context.Context, e model.AuditEntry) error {
	_, err := q.exec(ctx, q.sb.Insert("audit_logs").
		Columns("actor_id", "action", "details", "created_at").
		Values(toNullInt64(e.ActorID), e.Action, e.Details, ts(e.CreatedAt)))
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// ListAudit returns the newest entries first.
func (q *Queries) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	rows, err := q.query(ctx, q.sb.Select("id", "actor_id", "action", "details", "created_at").
		From("audit_logs").
		OrderBy("id DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	out := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		var actor sql.NullInt64
		if err := rows.Scan(&e.ID, &actor, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.ActorID = fromNullInt64(actor)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
