package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dossierr/case-assistant/internal/docstore"
	"github.com/dossierr/case-assistant/internal/service"
)

func RegisterRoutes(app *fiber.App, rag *service.RAGService, llm *service.LLMClient, docs *docstore.FSStore) {
	h := NewHandler(rag, llm, docs)

	app.Get("/health", h.Health)
	app.Get("/models", h.ListModels)
	app.Post("/cases/:case/query", h.Query)
	app.Post("/cases/:case/index", h.IndexCase)
	app.Post("/cases/:case/documents", h.UploadDocument)
}
