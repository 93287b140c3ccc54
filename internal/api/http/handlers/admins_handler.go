package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/api/dto"
	"github.com/spec-kit/transit-auth-service/internal/service"
)

// AdminsHandler exposes auth endpoints for administrative operators.
type AdminsHandler struct {
	auth *service.AuthService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(authService *service.AuthService) *AdminsHandler {
	return &AdminsHandler{auth: authService}
}

// Login handles POST /auth/admins/login.
func (h *AdminsHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	admin, pair, err := h.auth.LoginAdmin(c.UserContext(), req.Email, req.Password, clientInfo(c, req.Audience, false))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": dto.NewAdminResponse(admin),
			"auth":  dto.NewTokenPairResponse(pair),
		},
	})
}

// Refresh handles POST /auth/admins/refresh.
func (h *AdminsHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh_token required")
	}

	pair, err := h.auth.RefreshAdmin(c.UserContext(), req.RefreshToken, req.Audience)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.NewTokenPairResponse(pair)}})
}
