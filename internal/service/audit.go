package service

import (
	"context"

	"tournament-backend/internal/auth"
	"tournament-backend/internal/model"
	"tournament-backend/internal/store"
)

const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 500
)

type AuditService struct {
	base
}

func NewAuditService(d Deps) *AuditService {
	return &AuditService{base: newBase(d)}
}

// ListAudit returns the newest entries. Limits outside 1..MaxAuditLimit are
// clamped.
func (s *AuditService) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if _, err := auth.Require(ctx, auth.AdminOnly); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	return run(ctx, s.store, func(q *store.Queries) ([]model.AuditEntry, error) {
		return q.ListAudit(ctx, limit)
	})
}
