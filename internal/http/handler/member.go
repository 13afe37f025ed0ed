package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrag/internal/service"
)

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// ListMembers godoc
// @Summary Members of a workspace
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Success 200 {object} map[string][]model.WorkspaceMember
// @Router /workspaces/{workspace_id}/members [get]
func ListMembers(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		members, err := svc.List(c.UserContext(), currentActor(c), c.Params("workspace_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": members})
	}
}

// AddMember godoc
// @Summary Add a registered user to the workspace (admin)
// @Description Unknown users and existing members get the same MEMBER_ADD_REJECTED error.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param body body addMemberRequest true "Member"
// @Success 201 {object} model.WorkspaceMember
// @Failure 400 {object} errorPayload
// @Router /workspaces/{workspace_id}/members [post]
func AddMember(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id") {
			return writeInvalidID(c)
		}
		var req addMemberRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		m, err := svc.Add(c.UserContext(), currentActor(c), c.Params("workspace_id"), req.Email, req.Role)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// UpdateMemberRole godoc
// @Summary Change a member's role (admin)
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param user_id path string true "User ID"
// @Param body body updateRoleRequest true "Role"
// @Success 200 {object} model.WorkspaceMember
// @Failure 409 {object} errorPayload
// @Router /workspaces/{workspace_id}/members/{user_id} [patch]
func UpdateMemberRole(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id", "user_id") {
			return writeInvalidID(c)
		}
		var req updateRoleRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		m, err := svc.UpdateRole(c.UserContext(), currentActor(c), c.Params("workspace_id"), c.Params("user_id"), req.Role)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	}
}

// RemoveMember godoc
// @Summary Remove a member (admin)
// @Tags members
// @Security BearerAuth
// @Param workspace_id path string true "Workspace ID"
// @Param user_id path string true "User ID"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /workspaces/{workspace_id}/members/{user_id} [delete]
func RemoveMember(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if invalidIDs(c, "workspace_id", "user_id") {
			return writeInvalidID(c)
		}
		if err := svc.Remove(c.UserContext(), currentActor(c), c.Params("workspace_id"), c.Params("user_id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
