package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/auth"
)

// clientInfo captures where a login request came from.
func clientInfo(c *fiber.Ctx, audience string, mobile bool) auth.ClientInfo {
	return auth.ClientInfo{
		Audience:  audience,
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Mobile:    mobile,
	}
}
