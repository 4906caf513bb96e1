package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	PgConn     string
	ServerAddr string

	LLMBaseURL string
	LLMAPIKey  string
	ChatModel  string
	EmbedModel string
	EmbedDim   int

	DocsDir      string
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	HistoryWindow int
	HistoryTTL    time.Duration
	CacheTTL      time.Duration

	RetrievalEnabled        bool
	DegradeOnRetrievalError bool
}

// Load reads the environment. A value that is set but does not parse is a
// startup error, not a silent fallback to the default.
func Load() (*Config, error) {
	var r envReader
	cfg := &Config{
		PgConn:     r.str("PG_CONN", "host=localhost port=5432 user=postgres password=postgres dbname=case_assistant sslmode=disable"),
		ServerAddr: r.str("SERVER_ADDR", ":8080"),

		LLMBaseURL: r.str("LLM_BASE_URL", "http://localhost:1234/v1"),
		LLMAPIKey:  r.str("LLM_API_KEY", "not-needed"),
		ChatModel:  r.str("LLM_MODEL", "google/gemma-3n-e4b"),
		EmbedModel: r.str("EMBED_MODEL", "text-embedding-nomic-embed-text-v1.5"),
		EmbedDim:   r.int("EMBED_DIM", 768),

		DocsDir:      r.str("DOCS_DIR", "data/cases"),
		ChunkSize:    r.int("CHUNK_SIZE", 1000),
		ChunkOverlap: r.int("CHUNK_OVERLAP", 0),
		TopK:         r.int("TOP_K", 4),

		HistoryWindow: r.int("HISTORY_WINDOW", 5),
		HistoryTTL:    r.duration("HISTORY_TTL", 24*time.Hour),
		CacheTTL:      r.duration("CACHE_TTL", time.Hour),

		RetrievalEnabled:        r.bool("RETRIEVAL_ENABLED", true),
		DegradeOnRetrievalError: r.bool("DEGRADE_ON_RETRIEVAL_ERROR", false),
	}
	if r.err != nil {
		return nil, r.err
	}
	return cfg, nil
}

// Validate rejects a configuration the server cannot start with.
func (c *Config) Validate() error {
	if c.PgConn == "" {
		return fmt.Errorf("config: PG_CONN is required")
	}
	if c.LLMBaseURL == "" {
		return fmt.Errorf("config: LLM_BASE_URL is required")
	}
	if c.DocsDir == "" {
		return fmt.Errorf("config: DOCS_DIR is required")
	}
	if c.EmbedDim <= 0 {
		return fmt.Errorf("config: EMBED_DIM must be positive, got %d", c.EmbedDim)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config: CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("config: CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("config: TOP_K must be positive, got %d", c.TopK)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("config: HISTORY_WINDOW must be positive, got %d", c.HistoryWindow)
	}
	return nil
}

// envReader keeps the first parse failure so Load can report it.
type envReader struct {
	err error
}

func (r *envReader) str(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func (r *envReader) int(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(k, v, err)
		return def
	}
	return n
}

func (r *envReader) bool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(k, v, err)
		return def
	}
	return b
}

func (r *envReader) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(k, v, err)
		return def
	}
	return d
}

func (r *envReader) fail(k, v string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("config: %s=%q: %w", k, v, err)
	}
}
