package policy

import "docrag/internal/model"

// CheckAdminQuorum is the precondition every membership mutation must satisfy.
// adminCount is the workspace's admin count read inside the same transaction that
// applies the change; current is the target's role; next is the role after the
// change, or nil when the target is being removed.
func CheckAdminQuorum(adminCount int, current model.Role, next *model.Role) error {
	if current != model.RoleAdmin {
		return nil
	}
	if next != nil && *next == model.RoleAdmin {
		return nil
	}
	if adminCount <= 1 {
		return model.ErrQuorumViolation
	}
	return nil
}
