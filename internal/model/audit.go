package model

import "time"

// AuditAction enumerates governance-relevant operations.
type AuditAction string

const (
	ActionAuthRegister                 AuditAction = "auth_register"
	ActionAuthLogin                    AuditAction = "auth_login"
	ActionIngestDemo                   AuditAction = "ingest_demo"
	ActionQuery                        AuditAction = "query"
	ActionDocumentInventoryRead        AuditAction = "document_inventory_read"
	ActionDocumentClassificationUpdate AuditAction = "document_classification_update"
	ActionWorkspaceMemberRead          AuditAction = "workspace_member_read"
	ActionWorkspaceMemberAdd           AuditAction = "workspace_member_add"
	ActionWorkspaceMemberRoleUpdate    AuditAction = "workspace_member_role_update"
	ActionWorkspaceMemberRemove        AuditAction = "workspace_member_remove"
)

// Valid reports whether a is a known audit action.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionAuthRegister, ActionAuthLogin, ActionIngestDemo, ActionQuery,
		ActionDocumentInventoryRead, ActionDocumentClassificationUpdate,
		ActionWorkspaceMemberRead, ActionWorkspaceMemberAdd,
		ActionWorkspaceMemberRoleUpdate, ActionWorkspaceMemberRemove:
		return true
	default:
		return false
	}
}

// Outcome records whether an audited operation succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AuditEvent is an immutable record of a governance-relevant action.
// WorkspaceID is nil only for events that precede any workspace (e.g. a failed login);
// UserID is nil for system actions.
type AuditEvent struct {
	ID          string         `json:"id"`
	WorkspaceID *string        `json:"workspace_id"`
	UserID      *string        `json:"user_id"`
	Action      AuditAction    `json:"action"`
	Payload     map[string]any `json:"payload"`
	Outcome     Outcome        `json:"outcome"`
	CreatedAt   time.Time      `json:"created_at"`
}
