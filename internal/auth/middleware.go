package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

const identityKey = "auth_identity"

// AudienceHeader carries the client surface the caller claims to be
// ("web", "mobile"). Tokens are scoped to it at issuance.
const AudienceHeader = "X-Client-Audience"

// Middleware validates bearer tokens on protected routes and stores the
// resolved identity in request locals.
type Middleware struct {
	verifier *TokenVerifier
}

// NewMiddleware constructs the middleware over a verifier.
func NewMiddleware(verifier *TokenVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireUser authenticates a user-track token under the given mode.
func (m *Middleware) RequireUser(mode VerificationMode) fiber.Handler {
	return m.handler(mode, func(c *fiber.Ctx, token, audience string) (*Identity, error) {
		return m.verifier.VerifyUser(c.UserContext(), token, mode, audience)
	})
}

// RequireAdmin authenticates an admin-track token under the given mode.
func (m *Middleware) RequireAdmin(mode VerificationMode) fiber.Handler {
	return m.handler(mode, func(c *fiber.Ctx, token, audience string) (*Identity, error) {
		return m.verifier.VerifyAdmin(c.UserContext(), token, mode, audience)
	})
}

// RequireAny authenticates a token of either principal kind.
func (m *Middleware) RequireAny(mode VerificationMode) fiber.Handler {
	return m.handler(mode, func(c *fiber.Ctx, token, audience string) (*Identity, error) {
		return m.verifier.VerifyEither(c.UserContext(), token, mode, audience)
	})
}

func (m *Middleware) handler(mode VerificationMode, verify func(*fiber.Ctx, string, string) (*Identity, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return err
		}
		identity, err := verify(c, token, c.Get(AudienceHeader))
		if err != nil {
			return err
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}

// RequireKind guards a route group to one principal kind after the
// middleware has run.
func RequireKind(kind domain.PrincipalKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok || identity.Kind != kind {
			return fiber.NewError(fiber.StatusForbidden, string(kind)+" principal required")
		}
		return c.Next()
	}
}
