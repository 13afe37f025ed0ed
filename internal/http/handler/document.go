package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docrag/internal/service"
)

type classificationRequest struct {
	ClassificationLabel string `json:"classification_label"`
}

// IngestDemo godoc
// @Summary Replace the workspace corpus with the demo documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Success 200 {object} service.IngestResult
// @Failure 403 {object} errorPayload
// @Router /workspaces/{workspace_id}/ingest/demo [post]
func IngestDemo(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		res, err := svc.IngestDemo(c.UserContext(), currentActor(c), c.Params("workspace_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListDocuments godoc
// @Summary Document inventory visible to the caller
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.DocumentListResult
// @Router /workspaces/{workspace_id}/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), currentActor(c), c.Params("workspace_id"), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument godoc
// @Summary Document metadata with a short-lived archive link
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param document_id path string true "Document ID"
// @Success 200 {object} service.DocumentDetail
// @Failure 404 {object} errorPayload
// @Router /workspaces/{workspace_id}/documents/{document_id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id", "document_id") {
			return writeInvalidID(c)
		}
		doc, err := svc.Get(c.UserContext(), currentActor(c), c.Params("workspace_id"), c.Params("document_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateClassification godoc
// @Summary Relabel a document (admin)
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param document_id path string true "Document ID"
// @Param body body classificationRequest true "New label"
// @Success 200 {object} model.Document
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /workspaces/{workspace_id}/documents/{document_id}/classification [patch]
func UpdateClassification(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id", "document_id") {
			return writeInvalidID(c)
		}
		var req classificationRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		doc, err := svc.UpdateClassification(c.UserContext(), currentActor(c), c.Params("workspace_id"), c.Params("document_id"), req.ClassificationLabel)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}
