package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/dossierr/case-assistant/internal/api"
	"github.com/dossierr/case-assistant/internal/config"
	"github.com/dossierr/case-assistant/internal/docstore"
	"github.com/dossierr/case-assistant/internal/service"
	"github.com/dossierr/case-assistant/internal/store"
	"github.com/dossierr/case-assistant/internal/token"
)

func main() {
	_ = godotenv.Load()

	// config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// stores
	pgStore, err := store.NewPgStore(cfg.PgConn, cfg.EmbedDim)
	if err != nil {
		log.Fatal(err)
	}
	defer pgStore.Close()
	history := store.NewHistoryStore(pgStore.DB(), cfg.HistoryTTL)
	cache := store.NewAnswerCache(pgStore.DB(), cfg.CacheTTL)
	docs := docstore.NewFSStore(cfg.DocsDir)

	// services
	llm := service.NewLLMClient(cfg)
	indexer := service.NewIndexer(docs, llm, pgStore, cfg.ChunkSize, cfg.ChunkOverlap)
	resolver := service.NewResolver(pgStore, indexer)
	retriever := service.NewRetriever(llm, pgStore, cfg.TopK)
	counter := token.NewHeuristic()
	rag := service.NewRAGService(resolver, retriever, llm, history, cache, counter, service.Options{
		HistoryWindow:           cfg.HistoryWindow,
		RetrievalEnabled:        cfg.RetrievalEnabled,
		DegradeOnRetrievalError: cfg.DegradeOnRetrievalError,
	})

	// api
	app := fiber.New()
	api.RegisterRoutes(app, rag, llm, docs)

	log.Printf("🚀 Server started at %s", cfg.ServerAddr)
	log.Fatal(app.Listen(cfg.ServerAddr))
}
