package memory

import (
	"context"
	"slices"
	"sort"

	"docrag/internal/model"
	"docrag/internal/repository"
)

var _ repository.DocumentRepository = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of repository.DocumentRepository.
type DocumentStore struct {
	s *Store
}

// ReplaceCorpus drops the workspace's documents and chunks and stores the given ones.
func (d *DocumentStore) ReplaceCorpus(_ context.Context, workspaceID string, docs []model.Document, chunks []model.Chunk) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	for id, doc := range d.s.documents {
		if doc.WorkspaceID == workspaceID {
			delete(d.s.documents, id)
		}
	}
	for _, doc := range docs {
		doc.WorkspaceID = workspaceID
		d.s.documents[doc.ID] = doc
	}

	stored := make([]model.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.WorkspaceID = workspaceID
		c.Embedding = slices.Clone(c.Embedding)
		stored = append(stored, c)
	}
	d.s.chunks[workspaceID] = stored
	return nil
}

// List returns documents whose label is in labels, ordered by title then id.
func (d *DocumentStore) List(_ context.Context, workspaceID string, labels []model.ClassificationLabel, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	matched := make([]model.Document, 0)
	for _, doc := range d.s.documents {
		if doc.WorkspaceID == workspaceID && slices.Contains(labels, doc.ClassificationLabel) {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}
	return &repository.PageResult[model.Document]{
		Items: matched[start:end],
		Total: total,
	}, nil
}

// FindByID returns the document when it belongs to the workspace.
func (d *DocumentStore) FindByID(_ context.Context, workspaceID, id string) (*model.Document, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	doc, ok := d.s.documents[id]
	if !ok || doc.WorkspaceID != workspaceID {
		return nil, model.ErrNotFound
	}
	return &doc, nil
}

// UpdateClassification relabels a document and reports the label it replaced.
func (d *DocumentStore) UpdateClassification(_ context.Context, workspaceID, id string, label model.ClassificationLabel) (*model.Document, model.ClassificationLabel, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	doc, ok := d.s.documents[id]
	if !ok || doc.WorkspaceID != workspaceID {
		return nil, "", model.ErrNotFound
	}
	previous := doc.ClassificationLabel
	doc.ClassificationLabel = label
	d.s.documents[id] = doc
	return &doc, previous, nil
}

// ClassificationMap returns the current label for each known document of the workspace.
func (d *DocumentStore) ClassificationMap(_ context.Context, workspaceID string, documentIDs []string) (map[string]model.ClassificationLabel, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	out := make(map[string]model.ClassificationLabel, len(documentIDs))
	for _, id := range documentIDs {
		if doc, ok := d.s.documents[id]; ok && doc.WorkspaceID == workspaceID {
			out[id] = doc.ClassificationLabel
		}
	}
	return out, nil
}

// DeleteDocument removes a document and leaves its chunks behind. It exists to
// reproduce a dangling index entry, which the retrieval filter must drop.
func (d *DocumentStore) DeleteDocument(_ context.Context, id string) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	delete(d.s.documents, id)
}
