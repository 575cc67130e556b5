package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to auth_audit_events. The table should carry
// an INSERT-only policy.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_audit_events
	(id, type, actor_user_id, actor_email, actor_role, workspace, ip_address, outcome, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorUserID,
		e.ActorEmail,
		e.ActorRole,
		e.Workspace,
		e.IPAddress,
		e.Outcome,
		e.CreatedAt,
	)
	return err
}
