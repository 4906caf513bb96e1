package api

import (
	"errors"
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dossierr/case-assistant/internal/docstore"
	"github.com/dossierr/case-assistant/internal/model"
	"github.com/dossierr/case-assistant/internal/service"
)

// Handler holds the dependencies the HTTP layer needs.
type Handler struct {
	rag  *service.RAGService
	llm  *service.LLMClient
	docs *docstore.FSStore
}

func NewHandler(rag *service.RAGService, llm *service.LLMClient, docs *docstore.FSStore) *Handler {
	return &Handler{rag: rag, llm: llm, docs: docs}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// ListModels proxies the backend's model list.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	models, err := h.llm.Models(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(models)
}

// Query answers one user message for a case.
func (h *Handler) Query(c *fiber.Ctx) error {
	caseID := c.Params("case")
	var req model.AskRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request, expected JSON: {\"query\":\"...\"}"})
	}

	res, err := h.rag.Query(c.Context(), caseID, req.Query)
	if err != nil {
		return h.queryError(c, caseID, err)
	}
	return c.JSON(res)
}

// IndexCase builds or reuses a case's vector index; force=true rebuilds.
func (h *Handler) IndexCase(c *fiber.Ctx) error {
	caseID := c.Params("case")
	force := c.QueryBool("force")

	handle, err := h.rag.IndexFiles(c.Context(), caseID, force)
	if err != nil {
		return h.queryError(c, caseID, err)
	}
	return c.JSON(handle)
}

// UploadDocument saves a file into the case's folder, optionally rebuilding
// the index right away.
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	caseID := c.Params("case")
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required (form field: file)"})
	}
	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}

	name, err := h.docs.Put(c.Context(), caseID, file.Filename, data)
	if err != nil {
		log.Printf("upload for case %s failed: %v", caseID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save document"})
	}

	resp := fiber.Map{"status": "ok", "case_id": caseID, "doc": name}
	if c.QueryBool("reindex") {
		handle, err := h.rag.IndexFiles(c.Context(), caseID, true)
		if err != nil {
			return h.queryError(c, caseID, err)
		}
		resp["index"] = handle
	}
	return c.JSON(resp)
}

// queryError maps the pipeline's error kinds onto HTTP statuses. Failures
// always come back as errors, never as placeholder answers.
func (h *Handler) queryError(c *fiber.Ctx, caseID string, err error) error {
	log.Printf("case %s: %v", caseID, err)
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    err.Error(),
			"guidance": service.AccessDeniedGuidance,
		})
	case errors.Is(err, service.ErrRetrievalUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
