package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// PrincipalRepository resolves token subjects to their stored records.
type PrincipalRepository interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetAdminByID(ctx context.Context, id string) (*domain.Admin, error)
}

// Identity is the fully resolved result of a successful verification.
// Exactly one of User or Admin is set, matching Kind.
type Identity struct {
	Kind      domain.PrincipalKind
	SessionID string
	TokenType TokenType
	Purpose   Purpose
	ExpiresAt time.Time
	Session   *domain.Session
	User      *domain.User
	Admin     *domain.Admin
}

// PrincipalID returns the id of whichever principal the identity resolved.
func (id *Identity) PrincipalID() string {
	if id.User != nil {
		return id.User.ID
	}
	if id.Admin != nil {
		return id.Admin.ID
	}
	return ""
}

// TokenVerifier runs the verification pipeline: decode, session guard,
// type check, purpose check, principal lookup. Any stage failure
// short-circuits the rest.
type TokenVerifier struct {
	codec      *TokenCodec
	policy     ClaimPolicy
	guard      *SessionGuard
	principals PrincipalRepository
}

// NewTokenVerifier builds the verifier.
func NewTokenVerifier(codec *TokenCodec, guard *SessionGuard, principals PrincipalRepository) *TokenVerifier {
	return &TokenVerifier{codec: codec, guard: guard, principals: principals}
}

// VerifyUser verifies a user-track token under the given mode.
func (v *TokenVerifier) VerifyUser(ctx context.Context, token string, mode VerificationMode, audience string) (*Identity, error) {
	claims, err := v.decode(token, mode, audience)
	if err != nil {
		return nil, err
	}
	return v.verifyClaims(ctx, claims, domain.PrincipalUser, mode)
}

// VerifyAdmin verifies an admin-track token under the given mode.
func (v *TokenVerifier) VerifyAdmin(ctx context.Context, token string, mode VerificationMode, audience string) (*Identity, error) {
	claims, err := v.decode(token, mode, audience)
	if err != nil {
		return nil, err
	}
	return v.verifyClaims(ctx, claims, domain.PrincipalAdmin, mode)
}

// VerifyEither verifies a token whose principal kind the caller does not
// know. The kind is read from the type claim of the already
// signature-verified payload, never from a pre-parse of unverified data.
func (v *TokenVerifier) VerifyEither(ctx context.Context, token string, mode VerificationMode, audience string) (*Identity, error) {
	claims, err := v.decode(token, mode, audience)
	if err != nil {
		return nil, err
	}
	kind := domain.PrincipalAdmin
	if claims.TokenType.IsUser() {
		kind = domain.PrincipalUser
	}
	return v.verifyClaims(ctx, claims, kind, mode)
}

func (v *TokenVerifier) decode(token string, mode VerificationMode, audience string) (*Claims, error) {
	track := TrackAccess
	if mode == ModeRefresh {
		track = TrackRefresh
	}
	return v.codec.Decode(token, track, audience)
}

// verifyClaims runs the post-decode stages. The session check comes before
// type and purpose on purpose: a revoked session invalidates the token
// regardless of its claims, and a revoked token should not reach claim
// introspection at all.
func (v *TokenVerifier) verifyClaims(ctx context.Context, claims *Claims, kind domain.PrincipalKind, mode VerificationMode) (*Identity, error) {
	session, err := v.guard.Validate(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if err := v.policy.Check(claims, kind, mode); err != nil {
		return nil, err
	}

	identity := &Identity{
		Kind:      kind,
		SessionID: claims.SessionID,
		TokenType: claims.TokenType,
		Purpose:   claims.Purpose,
		Session:   session,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := v.lookupPrincipal(ctx, kind, claims.Subject, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (v *TokenVerifier) lookupPrincipal(ctx context.Context, kind domain.PrincipalKind, subject string, identity *Identity) error {
	switch kind {
	case domain.PrincipalUser:
		user, err := v.principals.GetUserByID(ctx, subject)
		if err != nil {
			return classifyLookupError(err)
		}
		identity.User = user
	case domain.PrincipalAdmin:
		admin, err := v.principals.GetAdminByID(ctx, subject)
		if err != nil {
			return classifyLookupError(err)
		}
		identity.Admin = admin
	default:
		return ErrWrongTokenType
	}
	return nil
}

func classifyLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPrincipalNotFound
	}
	return err
}
