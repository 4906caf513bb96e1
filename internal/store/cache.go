package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AnswerCache keeps generated answers keyed by prompt hash for a bounded
// validity window. It is purely a latency optimisation: staleness is bounded
// by the TTL and corruption is impossible, so no locking beyond Postgres's own.
type AnswerCache struct {
	db  *sql.DB
	ttl time.Duration
}

func NewAnswerCache(db *sql.DB, ttl time.Duration) *AnswerCache {
	return &AnswerCache{db: db, ttl: ttl}
}

func (c *AnswerCache) Get(ctx context.Context, key string) (string, bool, error) {
	var answer string
	err := c.db.QueryRowContext(ctx,
		`SELECT answer FROM answer_cache WHERE prompt_hash = $1 AND expires_at > now()`,
		key,
	).Scan(&answer)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: cache get: %w", err)
	}
	return answer, true, nil
}

func (c *AnswerCache) Put(ctx context.Context, key, answer string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO answer_cache (prompt_hash, answer, expires_at)
		VALUES ($1, $2, now() + make_interval(secs => $3))
		ON CONFLICT (prompt_hash) DO UPDATE SET answer = $2, expires_at = now() + make_interval(secs => $3)
	`, key, answer, c.ttl.Seconds())
	if err != nil {
		return fmt.Errorf("store: cache put: %w", err)
	}
	// drop whatever expired while we are here
	_, _ = c.db.ExecContext(ctx, `DELETE FROM answer_cache WHERE expires_at <= now()`)
	return nil
}
