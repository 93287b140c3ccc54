package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/api/dto"
	"github.com/spec-kit/transit-auth-service/internal/service"
)

// PasswordHandler exposes the OTP-based password reset flow.
type PasswordHandler struct {
	auth *service.AuthService
}

// NewPasswordHandler constructs handler.
func NewPasswordHandler(authService *service.AuthService) *PasswordHandler {
	return &PasswordHandler{auth: authService}
}

// RequestReset handles POST /auth/password/reset/request.
func (h *PasswordHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "reset code sent"}})
}

// ConfirmReset handles POST /auth/password/reset/confirm.
func (h *PasswordHandler) ConfirmReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Code == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email, code, password required")
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Email, req.Code, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}
