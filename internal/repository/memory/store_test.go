package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
	"docrag/internal/repository"
)

func seedWorkspace(t *testing.T, s *Store) (wsID, adminID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	user := model.User{ID: model.NewID(), Email: "admin@example.org", CreatedAt: now}
	ws := model.Workspace{ID: model.NewID(), Name: "Main", CreatedAt: now}
	require.NoError(t, s.Users().CreateWithWorkspace(ctx, user, ws))
	return ws.ID, user.ID
}

func addUser(t *testing.T, s *Store, email string) string {
	t.Helper()
	// Users only enter through registration, which also creates a workspace.
	user := model.User{ID: model.NewID(), Email: email, CreatedAt: time.Now().UTC()}
	ws := model.Workspace{ID: model.NewID(), Name: email, CreatedAt: user.CreatedAt}
	require.NoError(t, s.Users().CreateWithWorkspace(context.Background(), user, ws))
	return user.ID
}

func TestNewStore(t *testing.T) {
	s := NewStore()
	require.NotNil(t, s)
	assert.NotNil(t, s.documents)
	assert.NotNil(t, s.members)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := NewStore()
	seedWorkspace(t, s)

	err := s.Users().CreateWithWorkspace(context.Background(),
		model.User{ID: model.NewID(), Email: "admin@example.org"},
		model.Workspace{ID: model.NewID()})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestMemberStore_Quorum(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, admin := seedWorkspace(t, s)
	members := s.Members()

	_, err := members.UpdateRole(ctx, ws, admin, model.RoleMember)
	assert.ErrorIs(t, err, model.ErrQuorumViolation)
	assert.ErrorIs(t, members.Remove(ctx, ws, admin), model.ErrQuorumViolation)

	role, err := members.GetRole(ctx, ws, admin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	other := addUser(t, s, "second@example.org")
	_, err = members.Add(ctx, ws, other, model.RoleAdmin)
	require.NoError(t, err)

	m, err := members.UpdateRole(ctx, ws, admin, model.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, m.Role)
	assert.Equal(t, "admin@example.org", m.Email)

	_, err = members.UpdateRole(ctx, ws, other, model.RoleMember)
	assert.ErrorIs(t, err, model.ErrQuorumViolation)
}

func TestMemberStore_ConcurrentDemotionsKeepOneAdmin(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, admin := seedWorkspace(t, s)
	other := addUser(t, s, "second@example.org")
	_, err := s.Members().Add(ctx, ws, other, model.RoleAdmin)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{admin, other} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = s.Members().UpdateRole(ctx, ws, id, model.RoleMember)
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, model.ErrQuorumViolation)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, s.adminCount(ws))
}

func TestMemberStore_AddDuplicate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, admin := seedWorkspace(t, s)

	_, err := s.Members().Add(ctx, ws, admin, model.RoleMember)
	assert.ErrorIs(t, err, model.ErrConflict)

	assert.ErrorIs(t, s.Members().Remove(ctx, ws, model.NewID()), model.ErrNotFound)
}

func TestDocumentStore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, _ := seedWorkspace(t, s)
	docs := s.Documents()

	a := model.Document{ID: model.NewID(), Title: "b-title", ClassificationLabel: model.LabelPublic}
	b := model.Document{ID: model.NewID(), Title: "a-title", ClassificationLabel: model.LabelRestricted}
	require.NoError(t, docs.ReplaceCorpus(ctx, ws, []model.Document{a, b}, nil))

	page, err := docs.List(ctx, ws, model.AllLabels, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a-title", page.Items[0].Title)

	page, err = docs.List(ctx, ws, []model.ClassificationLabel{model.LabelPublic}, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	updated, prev, err := docs.UpdateClassification(ctx, ws, b.ID, model.LabelInternal)
	require.NoError(t, err)
	assert.Equal(t, model.LabelRestricted, prev)
	assert.Equal(t, model.LabelInternal, updated.ClassificationLabel)

	_, _, err = docs.UpdateClassification(ctx, model.NewID(), b.ID, model.LabelPublic)
	assert.ErrorIs(t, err, model.ErrNotFound)

	labels, err := docs.ClassificationMap(ctx, ws, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]model.ClassificationLabel{a.ID: model.LabelPublic, b.ID: model.LabelInternal}, labels)
}

func TestChunkStore_SearchCandidates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, _ := seedWorkspace(t, s)
	doc := model.Document{ID: model.NewID(), Title: "t", ClassificationLabel: model.LabelPublic}
	chunks := []model.Chunk{
		{ID: "c-b", DocumentID: doc.ID, Embedding: []float32{1, 0}},
		{ID: "c-a", DocumentID: doc.ID, Embedding: []float32{1, 0}},
		{ID: "c-c", DocumentID: doc.ID, Embedding: []float32{0, 1}},
	}
	require.NoError(t, s.Documents().ReplaceCorpus(ctx, ws, []model.Document{doc}, chunks))

	got, err := s.Chunks().SearchCandidates(ctx, ws, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c-a", got[0].Chunk.ID)
	assert.Equal(t, "c-b", got[1].Chunk.ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	other, err := s.Chunks().SearchCandidates(ctx, model.NewID(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAuditStore_NewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ws, _ := seedWorkspace(t, s)

	for _, action := range []model.AuditAction{model.ActionIngestDemo, model.ActionQuery, model.ActionDocumentInventoryRead} {
		require.NoError(t, s.Audit().Insert(ctx, &model.AuditEvent{ID: model.NewID(), WorkspaceID: &ws, Action: action}))
	}
	otherWS := model.NewID()
	require.NoError(t, s.Audit().Insert(ctx, &model.AuditEvent{ID: model.NewID(), WorkspaceID: &otherWS, Action: model.ActionQuery}))

	got, err := s.Audit().List(ctx, ws, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ActionDocumentInventoryRead, got[0].Action)
	assert.Equal(t, model.ActionQuery, got[1].Action)
}
