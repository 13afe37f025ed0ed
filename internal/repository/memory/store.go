// Package memory provides in-process implementations of the repository
// interfaces. All views share one Store so that membership mutations can
// check the admin quorum and apply the change under a single write lock.
package memory

import (
	"sync"
	"time"

	"docrag/internal/model"
)

type memberKey struct {
	workspaceID string
	userID      string
}

// Store is the shared in-memory state behind every repository view.
type Store struct {
	mu sync.RWMutex

	users      map[string]model.User
	emails     map[string]string
	workspaces map[string]model.Workspace
	members    map[memberKey]model.WorkspaceMember
	documents  map[string]model.Document
	chunks     map[string][]model.Chunk // by workspace
	audit      []model.AuditEvent

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]model.User),
		emails:     make(map[string]string),
		workspaces: make(map[string]model.Workspace),
		members:    make(map[memberKey]model.WorkspaceMember),
		documents:  make(map[string]model.Document),
		chunks:     make(map[string][]model.Chunk),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Documents returns the document repository view.
func (s *Store) Documents() *DocumentStore { return &DocumentStore{s: s} }

// Chunks returns the vector index view.
func (s *Store) Chunks() *ChunkStore { return &ChunkStore{s: s} }

// Members returns the membership repository view.
func (s *Store) Members() *MemberStore { return &MemberStore{s: s} }

// Users returns the user repository view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Workspaces returns the workspace repository view.
func (s *Store) Workspaces() *WorkspaceStore { return &WorkspaceStore{s: s} }

// Audit returns the audit repository view.
func (s *Store) Audit() *AuditStore { return &AuditStore{s: s} }
