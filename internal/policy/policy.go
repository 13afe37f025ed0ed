// Package policy holds the role-to-label mapping and the mutation authorization rules.
// Every function is a pure decision over its arguments; nothing here touches a store.
package policy

import (
	"fmt"

	"docrag/internal/model"
)

// AllowedLabels returns the classification labels a role may see, in ascending
// sensitivity. It is the single source of truth for retrieval filtering and
// inventory visibility. An unknown role sees nothing.
func AllowedLabels(role model.Role) []model.ClassificationLabel {
	switch role {
	case model.RoleAdmin:
		return []model.ClassificationLabel{
			model.LabelPublic,
			model.LabelInternal,
			model.LabelConfidential,
			model.LabelRestricted,
		}
	case model.RoleMember:
		return []model.ClassificationLabel{model.LabelPublic, model.LabelInternal}
	default:
		return nil
	}
}

// CanSee reports whether role may see a document carrying label.
func CanSee(role model.Role, label model.ClassificationLabel) bool {
	return Allows(AllowedLabels(role), label)
}

// Allows reports whether label is in allowed.
func Allows(allowed []model.ClassificationLabel, label model.ClassificationLabel) bool {
	for _, l := range allowed {
		if l == label {
			return true
		}
	}
	return false
}

// AuthorizeClassificationChange allows only admins to relabel documents.
func AuthorizeClassificationChange(role model.Role) error {
	return requireAdmin(role, "change document classification")
}

// AuthorizeMembershipMutation allows only admins to add, update or remove members.
func AuthorizeMembershipMutation(role model.Role) error {
	return requireAdmin(role, "mutate workspace membership")
}

// AuthorizeIngest allows only admins to replace a workspace corpus.
func AuthorizeIngest(role model.Role) error {
	return requireAdmin(role, "ingest documents")
}

// AuthorizeAuditRead allows only admins to read the audit trail.
func AuthorizeAuditRead(role model.Role) error {
	return requireAdmin(role, "read audit events")
}

func requireAdmin(role model.Role, action string) error {
	switch role {
	case model.RoleAdmin:
		return nil
	case model.RoleMember:
		return fmt.Errorf("%w: role %q may not %s", model.ErrForbidden, role, action)
	default:
		return fmt.Errorf("%w: unknown role may not %s", model.ErrForbidden, action)
	}
}
