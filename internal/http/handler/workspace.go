package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrag/internal/http/middleware"
	"docrag/internal/model"
	"docrag/internal/service"
)

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

// currentActor returns the authenticated caller, or the zero Actor which every
// service rejects as unauthenticated.
func currentActor(c *fiber.Ctx) model.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

// ListWorkspaces godoc
// @Summary Workspaces of the caller
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.WorkspaceWithRole
// @Router /workspaces [get]
func ListWorkspaces(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), currentActor(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// CreateWorkspace godoc
// @Summary Create a workspace administered by the caller
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createWorkspaceRequest true "Workspace"
// @Success 201 {object} model.WorkspaceWithRole
// @Failure 400 {object} errorPayload
// @Router /workspaces [post]
func CreateWorkspace(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createWorkspaceRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		ws, err := svc.Create(c.UserContext(), currentActor(c), req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ws)
	}
}
