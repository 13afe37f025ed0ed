package audit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docrag/internal/metrics"
	"docrag/internal/model"
	"docrag/internal/repository/memory"
	"docrag/internal/repository/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSanitize_Nested(t *testing.T) {
	in := map[string]any{
		"question": "what is the salary of X?",
		"top_k":    3,
		"citations": []any{
			map[string]any{"excerpt": "secret", "document_id": "d1"},
		},
		"nested": map[string]any{
			"deeper": []map[string]any{{"prompt": "p", "ok": true}},
		},
		"headers": map[string]string{"Token": "abc", "trace": "t"},
	}

	out := Sanitize(in)

	assert.Equal(t, Redacted, out["question"])
	assert.Equal(t, 3, out["top_k"])
	cit := out["citations"].([]any)[0].(map[string]any)
	assert.Equal(t, Redacted, cit["excerpt"])
	assert.Equal(t, "d1", cit["document_id"])
	deeper := out["nested"].(map[string]any)["deeper"].([]any)[0].(map[string]any)
	assert.Equal(t, Redacted, deeper["prompt"])
	assert.Equal(t, true, deeper["ok"])
	headers := out["headers"].(map[string]any)
	assert.Equal(t, Redacted, headers["Token"])
	assert.Equal(t, "t", headers["trace"])

	assert.Equal(t, "what is the salary of X?", in["question"], "input must not be modified")
}

func TestSanitize_Idempotent(t *testing.T) {
	in := map[string]any{
		"content": "x",
		"list":    []any{map[string]any{"source_url": "https://a"}, "plain"},
		"n":       map[string]any{"text": "y", "count": 2},
	}
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestSanitize_Nil(t *testing.T) {
	assert.Equal(t, map[string]any{}, Sanitize(nil))
}

func TestRecord_PersistsSanitized(t *testing.T) {
	store := memory.NewStore()
	log := New(store.Audit(), discardLogger(), nil, Options{})
	ctx := context.Background()
	ws := model.NewID()

	err := log.Record(ctx, Entry{
		WorkspaceID: ws,
		UserID:      model.NewID(),
		Action:      model.ActionQuery,
		Payload:     map[string]any{"question": "hi", "results": 2},
	})
	require.NoError(t, err)

	events, err := log.List(ctx, ws, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.OutcomeSuccess, events[0].Outcome)
	assert.Equal(t, Redacted, events[0].Payload["question"])
	assert.Equal(t, 2, events[0].Payload["results"])
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestRecord_SurvivesCanceledRequest(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	repo.On("Insert", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(nil).Once()

	log := New(repo, discardLogger(), nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := log.Record(ctx, Entry{WorkspaceID: model.NewID(), Action: model.ActionIngestDemo})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecord_FailureIsLoggedAndCounted(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	repo.On("Insert", mock.Anything, mock.Anything).
		Return(model.StorageError("insert audit event", errors.New("db down")))

	var buf bytes.Buffer
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	log := New(repo, slog.New(slog.NewJSONHandler(&buf, nil)), m, Options{})

	err = log.Record(context.Background(), Entry{
		WorkspaceID: model.NewID(),
		Action:      model.ActionWorkspaceMemberRemove,
		Outcome:     model.OutcomeFailure,
		Payload:     map[string]any{"password": "hunter2"},
	})

	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "audit_write_failed")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestRecord_UnknownAction(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	log := New(repo, discardLogger(), nil, Options{})

	err := log.Record(context.Background(), Entry{Action: "document_delete"})

	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRecord_MalformedWorkspaceIsSkipped(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	log := New(repo, discardLogger(), nil, Options{})

	err := log.Record(context.Background(), Entry{WorkspaceID: "invalid-workspace-id", Action: model.ActionQuery})

	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	log := New(repo, discardLogger(), nil, Options{})
	ctx := context.Background()
	ws := model.NewID()

	_, err := log.List(ctx, "nope", 10)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	repo.On("List", ctx, ws, 200).Return([]model.AuditEvent{}, nil).Once()
	_, err = log.List(ctx, ws, 5000)
	assert.NoError(t, err)

	repo.On("List", ctx, ws, 50).Return([]model.AuditEvent{}, nil).Once()
	_, err = log.List(ctx, ws, 0)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}
