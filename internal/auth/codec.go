package auth

import (
	"errors"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenCodec encodes and decodes signed claim sets. Encoding is a pure
// function of claims + track; the codec holds no mutable state beyond the
// two secrets loaded at construction.
type TokenCodec struct {
	cfg TokenConfig
}

// NewTokenCodec builds a codec over the immutable token configuration.
func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg}
}

func (c *TokenCodec) secret(track Track) []byte {
	if track == TrackRefresh {
		return c.cfg.RefreshSecret
	}
	return c.cfg.AccessSecret
}

// Encode signs the claim set under the secret selected by track.
func (c *TokenCodec) Encode(claims *Claims, track Track) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret(track))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a token string under the secret selected by
// track. Standard temporal claims are enforced here with the configured
// leeway; an expiry claim is required, and the token must be scoped to the
// given audience (compared lower-cased). A caller that states no audience
// is checked against the configured platform audience, mirroring the
// defaulting applied at issuance; the audience dimension is never skipped.
func (c *TokenCodec) Decode(tokenStr string, track Track, audience string) (*Claims, error) {
	aud := strings.ToLower(strings.TrimSpace(audience))
	if aud == "" {
		aud = strings.ToLower(c.cfg.Audience)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(c.cfg.Leeway),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
	}
	if aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret(track), nil
	}, opts...)
	if err != nil {
		return nil, classifyDecodeError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func classifyDecodeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
