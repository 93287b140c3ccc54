package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/api/dto"
	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/service"
)

// SessionsHandler exposes logout and session management endpoints.
type SessionsHandler struct {
	auth *service.AuthService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(authService *service.AuthService) *SessionsHandler {
	return &SessionsHandler{auth: authService}
}

// Logout handles POST /auth/logout. The bearer token identifies the
// session to destroy; both tokens of the pair die with it.
func (h *SessionsHandler) Logout(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), token, c.Get(auth.AudienceHeader)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// List handles GET /auth/sessions.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	sessions, err := h.auth.ListSessions(c.UserContext(), identity)
	if err != nil {
		return err
	}

	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewSessionResponse(session))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sessions": out}})
}

// Revoke handles DELETE /auth/sessions/:id.
func (h *SessionsHandler) Revoke(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	sessionID := c.Params("id")
	if sessionID == "" {
		return fiber.NewError(http.StatusBadRequest, "session id required")
	}

	if err := h.auth.RevokeSession(c.UserContext(), identity, sessionID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "session revoked"}})
}
