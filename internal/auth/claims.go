package auth

import (
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// Track selects which signing secret a token is bound to. Access-track
// tokens must never verify under the refresh secret and vice versa.
type Track int

const (
	TrackAccess Track = iota
	TrackRefresh
)

// TokenType combines the principal kind with the track the token serves.
type TokenType string

const (
	TokenTypeUserAccess   TokenType = "user-access"
	TokenTypeUserRefresh  TokenType = "user-refresh"
	TokenTypeAdminAccess  TokenType = "admin-access"
	TokenTypeAdminRefresh TokenType = "admin-refresh"
)

// TokenTypeFor derives the expected token type for a verification or
// issuance request.
func TokenTypeFor(kind domain.PrincipalKind, refresh bool) TokenType {
	if refresh {
		return TokenType(string(kind) + "-refresh")
	}
	return TokenType(string(kind) + "-access")
}

// IsUser reports whether the type names a user-track token. The ambiguous
// verification path routes on this.
func (t TokenType) IsUser() bool {
	return strings.Contains(string(t), string(domain.PrincipalUser))
}

// Purpose restricts what a token may be used for beyond plain
// authentication.
type Purpose string

const (
	PurposeGeneral               Purpose = "general"
	PurposeResetPassword         Purpose = "reset-password"
	PurposeTwoFactor             Purpose = "2fa"
	PurposeTwoFactorVerification Purpose = "2fa-verification"
	PurposeSetNewPassword        Purpose = "set-new-password"
	PurposeReadOnly              Purpose = "read-only"
	PurposeAddressBook           Purpose = "address_book"
)

// InfiniteExpiry is the sentinel expiry carried by long-lived mobile access
// tokens. It is a concrete timestamp, never an absent claim: a token
// without an expiry claim is malformed.
var InfiniteExpiry = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Claims is the payload carried inside every issued token. It is never
// persisted; each decode reconstructs it from the token string.
type Claims struct {
	TokenType TokenType `json:"type"`
	Purpose   Purpose   `json:"pur"`
	SessionID string    `json:"ses"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}
