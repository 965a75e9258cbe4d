package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docindex/internal/apperr"
	"docindex/internal/http/middleware"
	"docindex/internal/model"
	"docindex/internal/service"
)

// Handler wires the HTTP surface to the document and search services.
// Handlers stay free of business logic: they parse, delegate, and translate
// the typed errors into the response envelope.
type Handler struct {
	db     *sql.DB
	docs   service.DocumentService
	search service.SearchService
}

// New creates a Handler.
func New(db *sql.DB, docs service.DocumentService, search service.SearchService) *Handler {
	return &Handler{db: db, docs: docs, search: search}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/healthz", h.LivenessProbe)

	app.Post("/documents", h.CreateDocument)
	app.Get("/documents", h.SearchDocuments)
	app.Get("/documents/:id", h.GetDocument)
	app.Get("/documents/:id/content", h.GetDocumentContent)
	app.Patch("/documents/:id", h.UpdateDocument)
	app.Delete("/documents/:id", h.DeleteDocument)

	app.Post("/search/semantic", h.SearchSemantic)
}

// HealthCheck verifies database connectivity.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
}

// LivenessProbe is a simple liveness probe.
func (h *Handler) LivenessProbe(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// CreateDocument creates a new document from a JSON body.
func (h *Handler) CreateDocument(c *fiber.Ctx) error {
	var in model.CreateDocumentInput
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}

	doc, err := h.docs.Create(c.UserContext(), in, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetDocument returns a single document by id.
func (h *Handler) GetDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	doc, err := h.docs.Get(c.UserContext(), id, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(doc)
}

// GetDocumentContent streams the archived content of a document, or returns
// a presigned download URL when ?presigned=true.
func (h *Handler) GetDocumentContent(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	if c.QueryBool("presigned") {
		url, err := h.docs.ContentURL(c.UserContext(), id, middleware.UserFromCtx(c))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}

	rc, info, err := h.docs.GetContent(c.UserContext(), id, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}

	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	}
	// fasthttp closes the stream after sending when it implements io.Closer.
	if info.Size > 0 {
		return c.SendStream(rc, int(info.Size))
	}
	return c.SendStream(rc)
}

// UpdateDocument applies a partial update with optimistic concurrency.
func (h *Handler) UpdateDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	var in model.UpdateDocumentInput
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}

	doc, err := h.docs.Update(c.UserContext(), id, in, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(doc)
}

// DeleteDocument removes a document by id.
func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	if err := h.docs.Delete(c.UserContext(), id, middleware.UserFromCtx(c)); err != nil {
		return writeAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchDocuments runs a paginated metadata search from query parameters.
func (h *Handler) SearchDocuments(c *fiber.Ctx) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return writeAppError(c, err)
	}

	res, err := h.search.SearchMetadata(c.UserContext(), req, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(res)
}

// SearchSemantic runs a relevance query against the vector-retrieval backend.
func (h *Handler) SearchSemantic(c *fiber.Ctx) error {
	var req model.SemanticRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}

	res, err := h.search.SearchSemantic(c.UserContext(), req, middleware.UserFromCtx(c))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(res)
}

// parseSearchRequest converts query parameters into a SearchRequest.
// Type conversion only; range validation belongs to the search engine.
func parseSearchRequest(c *fiber.Ctx) (model.SearchRequest, error) {
	req := model.SearchRequest{
		Location:      c.Query("location"),
		Category:      c.Query("category"),
		FileExtension: c.Query("file_extension"),
	}

	for name, dst := range map[string]**int{
		"sensitivity":     &req.Sensitivity,
		"min_sensitivity": &req.MinSensitivity,
		"max_sensitivity": &req.MaxSensitivity,
	} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return model.SearchRequest{}, apperr.Validation(name, "must be an integer")
			}
			*dst = &n
		}
	}

	for name, dst := range map[string]**time.Time{
		"expires_after":  &req.ExpiresAfter,
		"expires_before": &req.ExpiresBefore,
	} {
		if v := c.Query(name); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return model.SearchRequest{}, apperr.Validation(name, "must be an RFC 3339 timestamp")
			}
			*dst = &ts
		}
	}

	for name, dst := range map[string]*int{
		"page":      &req.Page,
		"page_size": &req.PageSize,
	} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return model.SearchRequest{}, apperr.Validation(name, "must be an integer")
			}
			*dst = n
		}
	}

	return req, nil
}
