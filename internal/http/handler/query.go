package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrag/internal/service"
)

type queryRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k"`
}

// Query godoc
// @Summary Ask a question over the passages the caller may see
// @Tags query
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param body body queryRequest true "Question"
// @Success 200 {object} service.QueryResult
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /workspaces/{workspace_id}/query [post]
func Query(svc service.QueryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		topK := 0
		if req.TopK != nil {
			if *req.TopK < 1 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid argument")
			}
			topK = *req.TopK
		}

		res, err := svc.Query(c.UserContext(), currentActor(c), c.Params("workspace_id"), req.Question, topK)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
