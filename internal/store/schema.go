package store

import (
	"database/sql"
	"fmt"
)

// ensureSchema creates the pgvector extension and the tables backing the
// vector index, the chat history and the answer cache.
func ensureSchema(db *sql.DB, embedDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY,
			case_id TEXT NOT NULL,
			doc_name TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d)
		)`, embedDim),
		`CREATE INDEX IF NOT EXISTS chunks_case_idx ON chunks (case_id)`,
		`CREATE TABLE IF NOT EXISTS case_indexes (
			case_id TEXT PRIMARY KEY,
			entries INT NOT NULL,
			built_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			seq BIGSERIAL PRIMARY KEY,
			case_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS chat_history_case_idx ON chat_history (case_id, seq)`,
		`CREATE TABLE IF NOT EXISTS answer_cache (
			prompt_hash TEXT PRIMARY KEY,
			answer TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_class c
				JOIN pg_namespace n ON n.oid=c.relnamespace
				WHERE c.relname='chunks_embedding_ivfflat_idx'
			) THEN
				EXECUTE 'CREATE INDEX chunks_embedding_ivfflat_idx ON chunks USING ivfflat (embedding vector_l2_ops) WITH (lists=100)';
			END IF;
		END $$;`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}

	// ivfflat needs statistics to plan well
	_, _ = db.Exec(`ANALYZE chunks`)
	return nil
}
