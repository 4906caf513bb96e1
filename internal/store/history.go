package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dossierr/case-assistant/internal/model"
)

// HistoryStore is the per-case conversation log. Turns older than the TTL
// are invisible to reads and purged opportunistically on writes.
type HistoryStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewHistoryStore(db *sql.DB, ttl time.Duration) *HistoryStore {
	return &HistoryStore{db: db, ttl: ttl}
}

// Recent returns the newest n unexpired turns in chronological order.
func (s *HistoryStore) Recent(ctx context.Context, caseID string, n int) ([]model.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM chat_history
		WHERE case_id = $1 AND created_at > now() - make_interval(secs => $2)
		ORDER BY seq DESC
		LIMIT $3
	`, caseID, s.ttl.Seconds(), n)
	if err != nil {
		return nil, fmt.Errorf("store: history %s: %w", caseID, err)
	}
	defer rows.Close()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		if err := rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: history %s: %w", caseID, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: history %s: %w", caseID, err)
	}
	// newest-first from the query, callers want chronological
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// AppendExchange persists one query's user and assistant turns together, in
// order, so the log can never hold a user turn without its answer.
func (s *HistoryStore) AppendExchange(ctx context.Context, caseID, userText, assistantText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: append history %s: %w", caseID, err)
	}
	defer tx.Rollback()

	// seq comes from a sequence, and sequence values are handed out at insert
	// time regardless of transaction boundaries. Serialize same-case appends
	// so the two turns of one exchange always get consecutive seq values.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, caseID,
	); err != nil {
		return fmt.Errorf("store: append history %s: lock: %w", caseID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_history (case_id, role, content) VALUES ($1, $2, $3)`,
		caseID, model.RoleUser, userText,
	); err != nil {
		return fmt.Errorf("store: append history %s: user turn: %w", caseID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_history (case_id, role, content) VALUES ($1, $2, $3)`,
		caseID, model.RoleAssistant, assistantText,
	); err != nil {
		return fmt.Errorf("store: append history %s: assistant turn: %w", caseID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_history WHERE case_id = $1 AND created_at <= now() - make_interval(secs => $2)`,
		caseID, s.ttl.Seconds(),
	); err != nil {
		return fmt.Errorf("store: append history %s: purge: %w", caseID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: append history %s: %w", caseID, err)
	}
	return nil
}
