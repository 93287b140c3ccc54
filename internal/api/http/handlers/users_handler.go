package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/api/dto"
	"github.com/spec-kit/transit-auth-service/internal/service"
)

// UsersHandler exposes auth endpoints for end-users.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return fiber.NewError(http.StatusBadRequest, "full_name, email, password required")
	}

	user, pair, err := h.auth.RegisterUser(c.UserContext(), req.FullName, req.Email, req.Phone, req.Password, clientInfo(c, req.Audience, req.Mobile))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewTokenPairResponse(pair),
		},
	})
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, pair, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password, clientInfo(c, req.Audience, req.Mobile))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewTokenPairResponse(pair),
		},
	})
}

// Refresh handles POST /auth/users/refresh.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh_token required")
	}

	pair, err := h.auth.RefreshUser(c.UserContext(), req.RefreshToken, req.Audience)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.NewTokenPairResponse(pair)}})
}
