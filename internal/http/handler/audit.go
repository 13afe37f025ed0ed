package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docrag/internal/service"
)

// ListAudit godoc
// @Summary Newest audit events of the workspace (admin)
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} map[string][]model.AuditEvent
// @Failure 403 {object} errorPayload
// @Router /workspaces/{workspace_id}/audit [get]
func ListAudit(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		events, err := svc.List(c.UserContext(), currentActor(c), c.Params("workspace_id"), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": events})
	}
}
