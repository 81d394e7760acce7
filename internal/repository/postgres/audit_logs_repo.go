package postgres

import (
	"context"

	"github.com/dyilmaz/community-backend/internal/models"
	"github.com/dyilmaz/community-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func NewAuditLogs(pool *pgxpool.Pool) repository.AuditLogs {
	return &auditLogsRepo{pool: pool}
}

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs(id, entity_type, entity_id, action, details) VALUES($1,$2,$3,$4,$5)`,
		l.ID, l.EntityType, l.EntityID, l.Action, l.Details,
	)
	return err
}
