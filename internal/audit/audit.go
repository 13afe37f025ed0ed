// Package audit records governance-relevant actions. Writes are best effort:
// a failure to persist is logged and counted but never changes the outcome of
// the operation being audited.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/metrics"
	"docrag/internal/model"
	"docrag/internal/repository"
)

// Entry is an audit event before sanitization and persistence.
// Empty WorkspaceID or UserID are stored as null.
type Entry struct {
	WorkspaceID string
	UserID      string
	Action      model.AuditAction
	Payload     map[string]any
	Outcome     model.Outcome
}

// Options tunes persistence and listing. Zero values fall back to the defaults.
type Options struct {
	WriteTimeout time.Duration
	DefaultLimit int
	MaxLimit     int
}

const (
	DefaultWriteTimeout = 2 * time.Second
	DefaultLimit        = 50
	MaxLimit            = 200
)

// Log is the audit subsystem. It is safe for concurrent use.
type Log struct {
	repo    repository.AuditRepository
	logger  *slog.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New creates an audit Log. m may be nil.
func New(repo repository.AuditRepository, logger *slog.Logger, m *metrics.Metrics, opts Options) *Log {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	return &Log{repo: repo, logger: logger.With("component", "audit"), metrics: m, opts: opts}
}

// Record sanitizes and stores e. The store call runs on a context detached from
// ctx's cancellation with its own timeout, so an aborted request still leaves
// its trail. The returned error is informational; callers discard it.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if !e.Action.Valid() {
		err := fmt.Errorf("%w: unknown audit action %q", model.ErrInvalidArgument, e.Action)
		l.logger.Warn("audit_write_failed", "action", string(e.Action), "error", err.Error())
		l.metrics.AuditWriteFailed()
		return err
	}
	if e.WorkspaceID != "" {
		if err := model.CheckID("workspace", e.WorkspaceID); err != nil {
			l.logger.Warn("audit_write_skipped", "action", string(e.Action), "error", err.Error())
			return err
		}
	}
	if e.Outcome == "" {
		e.Outcome = model.OutcomeSuccess
	}

	ev := &model.AuditEvent{
		ID:          model.NewID(),
		WorkspaceID: optional(e.WorkspaceID),
		UserID:      optional(e.UserID),
		Action:      e.Action,
		Payload:     Sanitize(e.Payload),
		Outcome:     e.Outcome,
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.WriteTimeout)
	defer cancel()

	if err := l.repo.Insert(wctx, ev); err != nil {
		l.logger.Warn("audit_write_failed",
			"action", string(e.Action),
			"workspace_id", e.WorkspaceID,
			"outcome", string(e.Outcome),
			"error", err.Error(),
		)
		l.metrics.AuditWriteFailed()
		return err
	}
	return nil
}

// List returns the workspace's events newest first. limit <= 0 means the
// default; larger values are capped.
func (l *Log) List(ctx context.Context, workspaceID string, limit int) ([]model.AuditEvent, error) {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return nil, err
	}
	return l.repo.List(ctx, workspaceID, l.ClampLimit(limit))
}

// ClampLimit applies the default and the upper bound to a requested page size.
func (l *Log) ClampLimit(limit int) int {
	if limit <= 0 {
		return l.opts.DefaultLimit
	}
	return min(limit, l.opts.MaxLimit)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
