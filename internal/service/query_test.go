package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/audit"
	"docrag/internal/embedding"
	"docrag/internal/generator"
	"docrag/internal/model"
	"docrag/internal/retrieval"
)

func TestQuery_EndToEndRelabelHidesEverythingFromMembers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, member, ws := h.seed(t)

	res, err := h.query.Query(ctx, admin, ws, "laptop budget for employees", 4)
	require.NoError(t, err)
	assert.Len(t, res.Citations, 4, "admin sees every document")
	assert.Equal(t, model.RoleAdmin, res.Policy.AccessRole)
	assert.Equal(t, model.AllLabels, res.Policy.AllowedClassificationLabels)
	assert.True(t, res.Policy.PolicyEnforced)
	assert.Equal(t, FilteringModeInRetrieval, res.Policy.PolicyFilteringMode)

	inventory, err := h.documents.List(ctx, admin, ws, 0, 0)
	require.NoError(t, err)
	require.Len(t, inventory.Items, 4)
	for _, d := range inventory.Items {
		_, err := h.documents.UpdateClassification(ctx, admin, ws, d.ID, string(model.LabelRestricted))
		require.NoError(t, err)
	}

	res, err = h.query.Query(ctx, member, ws, "laptop budget for employees", 3)
	require.NoError(t, err)
	assert.Equal(t, generator.NoResults, res.Answer)
	assert.Empty(t, res.Citations)
	assert.Equal(t, 0, res.Policy.ReturnedResults)
	assert.Equal(t, 4, res.Policy.CandidateResults)
	assert.Equal(t, 4, res.Policy.FilteredByPolicy)
	assert.Equal(t, []model.ClassificationLabel{model.LabelPublic, model.LabelInternal}, res.Policy.AllowedClassificationLabels)

	res, err = h.query.Query(ctx, admin, ws, "laptop budget for employees", 3)
	require.NoError(t, err)
	assert.Len(t, res.Citations, 3)
	assert.NotEqual(t, generator.NoResults, res.Answer)
}

func TestQuery_MemberNeverSeesRestrictedPassages(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, member, ws := h.seed(t)

	res, err := h.query.Query(ctx, member, ws, "salary bands compensation committee", 10)
	require.NoError(t, err)
	assert.Len(t, res.Citations, 3)
	for _, c := range res.Citations {
		assert.NotEqual(t, "Salary bands", c.SourceTitle)
	}
	assert.Equal(t, 1, res.Policy.FilteredByPolicy)
	assert.NotContains(t, res.Answer, "Salary bands for engineering")
}

func TestQuery_AuditPayloadIsRedacted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, member, ws := h.seed(t)

	_, err := h.query.Query(ctx, member, ws, "how are travel expenses reimbursed?", 0)
	require.NoError(t, err)

	ev := h.lastEvent(t, ws)
	assert.Equal(t, model.ActionQuery, ev.Action)
	assert.Equal(t, member.UserID, *ev.UserID)
	assert.Equal(t, audit.Redacted, ev.Payload["question"])
	assert.Equal(t, 3, ev.Payload["top_k"])
	assert.Equal(t, "member", ev.Payload["access_role"])
	assert.Equal(t, false, ev.Payload["llm_used"])
	assert.Equal(t, 1, ev.Payload["retrieval_rounds"])
}

func TestQuery_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, _, ws := h.seed(t)
	outsider, _ := h.register(t, "outsider@example.org")

	tests := []struct {
		name     string
		actor    model.Actor
		ws       string
		question string
		topK     int
		wantErr  error
	}{
		{name: "malformed workspace", actor: admin, ws: "nope", question: "q", topK: 3, wantErr: model.ErrInvalidArgument},
		{name: "empty question", actor: admin, ws: ws, question: "   ", topK: 3, wantErr: model.ErrInvalidArgument},
		{name: "top_k too large", actor: admin, ws: ws, question: "q", topK: 11, wantErr: model.ErrInvalidArgument},
		{name: "negative top_k", actor: admin, ws: ws, question: "q", topK: -1, wantErr: model.ErrInvalidArgument},
		{name: "not a member", actor: outsider, ws: ws, question: "q", topK: 3, wantErr: model.ErrForbidden},
		{name: "anonymous", actor: model.Actor{}, ws: ws, question: "q", topK: 3, wantErr: model.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.query.Query(ctx, tt.actor, tt.ws, tt.question, tt.topK)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type searcherFunc func(topK int) []model.ScoredChunk

func (f searcherFunc) Search(_ context.Context, _ string, _ []float32, topK int, _ []model.ClassificationLabel) (retrieval.Result, error) {
	chunks := f(topK)
	return retrieval.Result{Chunks: chunks, Stats: retrieval.Stats{CandidateResults: len(chunks), Rounds: 1}}, nil
}

type failingLLM struct{}

func (failingLLM) Generate(context.Context, string, []model.ScoredChunk) (string, error) {
	return "", errors.New("quota exceeded")
}

func (failingLLM) UsesLLM() bool { return true }

func TestQuery_GeneratorFailureFallsBackToExtractive(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin, _, ws := h.seed(t)

	embedder := embedding.NewHash(64)
	svc := NewQueryService(h.store.Members(), embedder, searcherFunc(func(int) []model.ScoredChunk {
		return []model.ScoredChunk{{Chunk: model.Chunk{ID: "c1", Content: "the passage"}, Score: 0.9}}
	}), failingLLM{}, h.audit, discardLogger(), QueryConfig{})

	res, err := svc.Query(ctx, admin, ws, "anything", 1)
	require.NoError(t, err)
	assert.Equal(t, "the passage", res.Answer)
	assert.Equal(t, false, h.lastEvent(t, ws).Payload["llm_used"])
}

func TestExcerpt(t *testing.T) {
	short := "short passage"
	assert.Equal(t, short, excerpt(short))

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'è'
	}
	assert.Len(t, []rune(excerpt(string(long))), 200)
}
