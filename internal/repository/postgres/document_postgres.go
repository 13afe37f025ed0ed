package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, workspace_id, title, source_url, license, accessed_at, classification_label, storage_path, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d           model.Document
		sourceURL   sql.NullString
		license     sql.NullString
		accessedAt  sql.NullTime
		label       string
		storagePath sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.WorkspaceID,
		&d.Title,
		&sourceURL,
		&license,
		&accessedAt,
		&label,
		&storagePath,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.SourceURL = stringPtr(sourceURL)
	d.License = stringPtr(license)
	d.AccessedAt = timePtr(accessedAt)
	d.ClassificationLabel = model.ClassificationLabel(label)
	d.StoragePath = storagePath.String
	return &d, nil
}

// ReplaceCorpus swaps the workspace's documents and chunks in one transaction.
// Chunks go with their documents through ON DELETE CASCADE.
func (r *DocumentPostgres) ReplaceCorpus(ctx context.Context, workspaceID string, docs []model.Document, chunks []model.Chunk) error {
	const (
		qDelete = `DELETE FROM documents WHERE workspace_id = $1`
		qDoc    = `
			INSERT INTO documents (id, workspace_id, title, source_url, license, accessed_at, text, classification_label, storage_path, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		qChunk = `
			INSERT INTO chunks (id, document_id, workspace_id, chunk_index, start_char, end_char, content, embedding, source_title, source_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
	)
	return withTx(ctx, r.db, "replace corpus", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, qDelete, workspaceID); err != nil {
			return model.StorageError("delete documents", err)
		}
		for _, d := range docs {
			if _, err := tx.ExecContext(ctx, qDoc,
				d.ID,
				workspaceID,
				d.Title,
				nullString(d.SourceURL),
				nullString(d.License),
				nullTime(d.AccessedAt),
				d.Text,
				string(d.ClassificationLabel),
				sql.NullString{String: d.StoragePath, Valid: d.StoragePath != ""},
				d.CreatedAt,
			); err != nil {
				return model.StorageError("insert document", err)
			}
		}
		for _, c := range chunks {
			if _, err := tx.ExecContext(ctx, qChunk,
				c.ID,
				c.DocumentID,
				workspaceID,
				c.ChunkIndex,
				c.StartChar,
				c.EndChar,
				c.Content,
				pgvector.NewVector(c.Embedding),
				c.SourceTitle,
				nullString(c.SourceURL),
			); err != nil {
				return model.StorageError("insert chunk", err)
			}
		}
		return nil
	})
}

// List returns the visible documents of a workspace using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, workspaceID string, labels []model.ClassificationLabel, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	if len(labels) == 0 {
		return &repository.PageResult[model.Document]{Items: []model.Document{}}, nil
	}

	args := make([]any, 0, len(labels)+3)
	args = append(args, workspaceID)
	for _, l := range labels {
		args = append(args, string(l))
	}
	filter := `WHERE workspace_id = $1 AND classification_label IN (` + placeholders(2, len(labels)) + `)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents `+filter, args...).Scan(&total); err != nil {
		return nil, model.StorageError("count documents", err)
	}

	n := len(args)
	qList := `SELECT ` + documentColumns + ` FROM documents ` + filter +
		` ORDER BY title ASC, id ASC LIMIT ` + placeholders(n+1, 1) + ` OFFSET ` + placeholders(n+2, 1)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, model.StorageError("list documents", err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, model.StorageError("scan document", err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("list documents", err)
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// FindByID fetches a single document of the workspace.
func (r *DocumentPostgres) FindByID(ctx context.Context, workspaceID, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND workspace_id = $2`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, workspaceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, model.StorageError("find document", err)
	}
	return d, nil
}

// UpdateClassification locks the document row, records its current label and relabels it.
func (r *DocumentPostgres) UpdateClassification(ctx context.Context, workspaceID, id string, label model.ClassificationLabel) (*model.Document, model.ClassificationLabel, error) {
	const (
		qLock   = `SELECT classification_label FROM documents WHERE id = $1 AND workspace_id = $2 FOR UPDATE`
		qUpdate = `UPDATE documents SET classification_label = $3 WHERE id = $1 AND workspace_id = $2 RETURNING ` + documentColumns
	)
	var (
		out      *model.Document
		previous model.ClassificationLabel
	)
	err := withTx(ctx, r.db, "update classification", func(tx *sql.Tx) error {
		var prev string
		if err := tx.QueryRowContext(ctx, qLock, id, workspaceID).Scan(&prev); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrNotFound
			}
			return model.StorageError("lock document", err)
		}
		d, err := scanDocument(tx.QueryRowContext(ctx, qUpdate, id, workspaceID, string(label)))
		if err != nil {
			return model.StorageError("update classification", err)
		}
		out, previous = d, model.ClassificationLabel(prev)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, previous, nil
}

// ClassificationMap reads the current labels for the given documents.
// Malformed ids are dropped before querying; if none remain the database is not touched.
func (r *DocumentPostgres) ClassificationMap(ctx context.Context, workspaceID string, documentIDs []string) (map[string]model.ClassificationLabel, error) {
	out := make(map[string]model.ClassificationLabel, len(documentIDs))

	args := []any{workspaceID}
	seen := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
	}
	if len(args) == 1 {
		return out, nil
	}

	q := `SELECT id, classification_label FROM documents WHERE workspace_id = $1 AND id IN (` + placeholders(2, len(args)-1) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, model.StorageError("classification map", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, model.StorageError("scan classification", err)
		}
		out[id] = model.ClassificationLabel(label)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("classification map", err)
	}
	return out, nil
}
