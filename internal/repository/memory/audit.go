package memory

import (
	"context"
	"maps"

	"docrag/internal/model"
	"docrag/internal/repository"
)

var _ repository.AuditRepository = (*AuditStore)(nil)

// AuditStore is an append-only in-memory audit log.
type AuditStore struct {
	s *Store
}

// Insert appends ev, stamping CreatedAt.
func (a *AuditStore) Insert(_ context.Context, ev *model.AuditEvent) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	ev.CreatedAt = a.s.now()
	stored := *ev
	stored.Payload = maps.Clone(ev.Payload)
	a.s.audit = append(a.s.audit, stored)
	return nil
}

// List walks the log backwards, so ties on CreatedAt resolve to the later insert.
func (a *AuditStore) List(_ context.Context, workspaceID string, limit int) ([]model.AuditEvent, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]model.AuditEvent, 0)
	for i := len(a.s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		ev := a.s.audit[i]
		if ev.WorkspaceID != nil && *ev.WorkspaceID == workspaceID {
			out = append(out, ev)
		}
	}
	return out, nil
}
