package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// AuditPostgres is the append-only audit_logs table. Payloads are stored as JSONB.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert stores ev and fills in the server-assigned timestamp.
func (r *AuditPostgres) Insert(ctx context.Context, ev *model.AuditEvent) error {
	const q = `
		INSERT INTO audit_logs (id, workspace_id, user_id, action, payload, outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}
	if err := r.db.QueryRowContext(ctx, q,
		ev.ID,
		nullString(ev.WorkspaceID),
		nullString(ev.UserID),
		string(ev.Action),
		payload,
		string(ev.Outcome),
	).Scan(&ev.CreatedAt); err != nil {
		return model.StorageError("insert audit event", err)
	}
	return nil
}

func (r *AuditPostgres) List(ctx context.Context, workspaceID string, limit int) ([]model.AuditEvent, error) {
	const q = `
		SELECT id, workspace_id, user_id, action, payload, outcome, created_at
		FROM audit_logs
		WHERE workspace_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, workspaceID, limit)
	if err != nil {
		return nil, model.StorageError("list audit events", err)
	}
	defer rows.Close()

	out := make([]model.AuditEvent, 0)
	for rows.Next() {
		var (
			ev      model.AuditEvent
			wsID    sql.NullString
			userID  sql.NullString
			action  string
			payload []byte
			outcome string
		)
		if err := rows.Scan(&ev.ID, &wsID, &userID, &action, &payload, &outcome, &ev.CreatedAt); err != nil {
			return nil, model.StorageError("scan audit event", err)
		}
		ev.WorkspaceID = stringPtr(wsID)
		ev.UserID = stringPtr(userID)
		ev.Action = model.AuditAction(action)
		ev.Outcome = model.Outcome(outcome)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, model.StorageError("decode audit payload", err)
			}
		}
		if ev.Payload == nil {
			ev.Payload = map[string]any{}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("list audit events", err)
	}
	return out, nil
}
