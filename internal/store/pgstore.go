// Package store holds the Postgres-backed persistence: the per-case vector
// index, the expiring chat history and the expiring answer cache.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/dossierr/case-assistant/internal/model"
)

// PgStore is the per-case vector index on Postgres + pgvector.
type PgStore struct {
	db *sql.DB
}

func NewPgStore(conn string, embedDim int) (*PgStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := ensureSchema(db, embedDim); err != nil {
		return nil, err
	}
	return &PgStore{db: db}, nil
}

func (s *PgStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle so the history store and cache can share
// the connection pool.
func (s *PgStore) DB() *sql.DB { return s.db }

// Stat reports whether a case has an active index. The registry row is the
// sole reuse-vs-rebuild signal.
func (s *PgStore) Stat(ctx context.Context, caseID string) (model.IndexHandle, bool, error) {
	var h model.IndexHandle
	h.CaseID = caseID
	err := s.db.QueryRowContext(ctx,
		`SELECT entries, built_at FROM case_indexes WHERE case_id = $1`, caseID,
	).Scan(&h.Entries, &h.BuiltAt)
	if err == sql.ErrNoRows {
		return h, false, nil
	}
	if err != nil {
		return h, false, fmt.Errorf("store: stat index %s: %w", caseID, err)
	}
	return h, true, nil
}

// Rebuild replaces the case's index with the given entries in one
// transaction, so a failed build never leaves a half-written index.
func (s *PgStore) Rebuild(ctx context.Context, caseID string, entries []model.IndexEntry) (model.IndexHandle, error) {
	var h model.IndexHandle
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return h, fmt.Errorf("store: rebuild %s: %w", caseID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE case_id = $1`, caseID); err != nil {
		return h, fmt.Errorf("store: rebuild %s: clear: %w", caseID, err)
	}
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, case_id, doc_name, chunk_id, text, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), caseID, e.Chunk.Source, e.Chunk.ID, e.Chunk.Text, pgvector.NewVector(e.Embedding))
		if err != nil {
			return h, fmt.Errorf("store: rebuild %s: insert %s: %w", caseID, e.Chunk.ID, err)
		}
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO case_indexes (case_id, entries, built_at)
		VALUES ($1, $2, now())
		ON CONFLICT (case_id) DO UPDATE SET entries = $2, built_at = now()
		RETURNING entries, built_at
	`, caseID, len(entries)).Scan(&h.Entries, &h.BuiltAt)
	if err != nil {
		return h, fmt.Errorf("store: rebuild %s: register: %w", caseID, err)
	}
	if err := tx.Commit(); err != nil {
		return h, fmt.Errorf("store: rebuild %s: commit: %w", caseID, err)
	}
	h.CaseID = caseID
	return h, nil
}

// Search returns the case's k nearest chunks. Score is L2 distance, so the
// rows come back best first. Rows that fail to scan are skipped, not fatal.
func (s *PgStore) Search(ctx context.Context, caseID string, vector []float32, k int) ([]model.Passage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT text, doc_name, embedding <-> $2 AS distance
		FROM chunks
		WHERE case_id = $1
		ORDER BY distance
		LIMIT $3
	`, caseID, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("store: search %s: %w", caseID, err)
	}
	defer rows.Close()

	var res []model.Passage
	for rows.Next() {
		var p model.Passage
		if err := rows.Scan(&p.Text, &p.Source, &p.Score); err != nil {
			log.Printf("store: search %s: skipping unreadable row: %v", caseID, err)
			continue
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: search %s: %w", caseID, err)
	}
	return res, nil
}
