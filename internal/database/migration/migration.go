package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is current.
const sentinelTable = "public.audit_logs"

func steps(embeddingDim int) []migrationStep {
	return []migrationStep{
		{
			Name: "create_extension_uuid_ossp",
			SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		},
		{
			Name: "create_extension_vector",
			SQL:  `CREATE EXTENSION IF NOT EXISTS vector;`,
		},
		{
			Name: "create_table_users",
			SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_table_workspaces",
			SQL: `CREATE TABLE IF NOT EXISTS workspaces (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_table_workspace_members",
			SQL: `CREATE TABLE IF NOT EXISTS workspace_members (
  workspace_id UUID        NOT NULL REFERENCES workspaces (id) ON DELETE CASCADE,
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  role         TEXT        NOT NULL CHECK (role IN ('admin', 'member')),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (workspace_id, user_id)
);`,
		},
		{
			Name: "create_index_workspace_members_user",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_workspace_members_user ON workspace_members (user_id);`,
		},
		{
			Name: "create_table_documents",
			SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  workspace_id         UUID        NOT NULL REFERENCES workspaces (id) ON DELETE CASCADE,
  title                TEXT        NOT NULL,
  source_url           TEXT,
  license              TEXT,
  accessed_at          DATE,
  text                 TEXT        NOT NULL,
  classification_label TEXT        NOT NULL DEFAULT 'internal'
    CHECK (classification_label IN ('public', 'internal', 'confidential', 'restricted')),
  storage_path         TEXT,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_index_documents_workspace_title",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_workspace_title ON documents (workspace_id, title, id);`,
		},
		{
			Name: "create_table_chunks",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id  UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  workspace_id UUID        NOT NULL REFERENCES workspaces (id) ON DELETE CASCADE,
  chunk_index  INT         NOT NULL,
  start_char   INT         NOT NULL,
  end_char     INT         NOT NULL,
  content      TEXT        NOT NULL,
  embedding    vector(%d)  NOT NULL,
  source_title TEXT        NOT NULL,
  source_url   TEXT
);`, embeddingDim),
		},
		{
			Name: "create_index_chunks_workspace",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_chunks_workspace ON chunks (workspace_id);`,
		},
		{
			Name: "create_table_audit_logs",
			SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  workspace_id UUID        REFERENCES workspaces (id) ON DELETE SET NULL,
  user_id      UUID        REFERENCES users (id) ON DELETE SET NULL,
  action       TEXT        NOT NULL,
  payload      JSONB       NOT NULL DEFAULT '{}'::jsonb,
  outcome      TEXT        NOT NULL DEFAULT 'success' CHECK (outcome IN ('success', 'failure')),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
		{
			Name: "create_index_audit_logs_workspace_created",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_logs_workspace_created ON audit_logs (workspace_id, created_at DESC);`,
		},
	}
}

// EnsureMigrated checks if the sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string, embeddingDim int) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"msg", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps(embeddingDim) {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
