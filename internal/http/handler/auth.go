package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrag/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Create an account
// @Description Creates the user and a default workspace administered by it.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		res, err := svc.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login godoc
// @Summary Obtain a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeInvalidBody(c)
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
