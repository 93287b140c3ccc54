package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/transit-auth-service/internal/domain"
	"github.com/spec-kit/transit-auth-service/internal/repository"
)

// TokenConfig holds the immutable signing and lifetime parameters shared
// by the codec and issuer. It is constructed once at process start and
// passed by value; nothing mutates it afterwards.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

// TokenPair is the result of issuing tokens against a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// ClientInfo describes where a login came from. Audience scopes the
// tokens; the rest is recorded on the session for the owner's session
// list.
type ClientInfo struct {
	Audience  string
	IPAddress string
	UserAgent string
	Mobile    bool
}

// TokenIssuer mints access/refresh pairs bound to a server-side session.
type TokenIssuer struct {
	sessions repository.SessionRepository
	codec    *TokenCodec
	cfg      TokenConfig
	now      func() time.Time
}

// NewTokenIssuer builds the issuer.
func NewTokenIssuer(sessions repository.SessionRepository, codec *TokenCodec, cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{sessions: sessions, codec: codec, cfg: cfg, now: time.Now}
}

// IssueUserPair creates a fresh session for the user and mints a pair
// bound to it. Accounts with a pending or approved deletion request get
// their purpose downgraded to read-only at issuance, making the stored
// purpose authoritative for the token's whole lifetime. Mobile issuance
// puts the infinite-expiry sentinel on the access token only.
func (i *TokenIssuer) IssueUserPair(ctx context.Context, user *domain.User, client ClientInfo, purpose Purpose) (*TokenPair, *domain.Session, error) {
	if purpose == "" {
		purpose = PurposeGeneral
	}
	if user.PendingDeletion() {
		purpose = PurposeReadOnly
	}
	session, err := i.createSession(ctx, domain.PrincipalUser, user.ID, client)
	if err != nil {
		return nil, nil, err
	}
	pair, err := i.PairForSession(session, user.ID, user.Email, user.FullName, purpose, client.Mobile)
	if err != nil {
		return nil, nil, err
	}
	return pair, session, nil
}

// IssueAdminPair creates a fresh session for the admin and mints a pair
// bound to it. Admin issuance has no mobile variant.
func (i *TokenIssuer) IssueAdminPair(ctx context.Context, admin *domain.Admin, client ClientInfo, purpose Purpose) (*TokenPair, *domain.Session, error) {
	if purpose == "" {
		purpose = PurposeGeneral
	}
	session, err := i.createSession(ctx, domain.PrincipalAdmin, admin.ID, client)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(admin.FirstName + " " + admin.LastName)
	pair, err := i.PairForSession(session, admin.ID, admin.Email, name, purpose, false)
	if err != nil {
		return nil, nil, err
	}
	return pair, session, nil
}

// PairForSession encodes an access/refresh pair bound to an existing
// session. The refresh flow uses this directly so a refreshed pair stays
// bound to the login session it came from.
func (i *TokenIssuer) PairForSession(session *domain.Session, subject, email, name string, purpose Purpose, isMobile bool) (*TokenPair, error) {
	now := i.now()

	accessExpiry := now.Add(i.cfg.AccessTTL)
	if isMobile {
		accessExpiry = InfiniteExpiry
	}
	access := &Claims{
		TokenType: TokenTypeFor(session.PrincipalKind, false),
		Purpose:   purpose,
		SessionID: session.ID,
		Email:     email,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{session.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}
	accessToken, err := i.codec.Encode(access, TrackAccess)
	if err != nil {
		return nil, err
	}

	refresh := &Claims{
		TokenType: TokenTypeFor(session.PrincipalKind, true),
		Purpose:   purpose,
		SessionID: session.ID,
		Email:     email,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{session.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.RefreshTTL)),
		},
	}
	refreshToken, err := i.codec.Encode(refresh, TrackRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(i.cfg.AccessTTL.Seconds()),
	}, nil
}

// createSession inserts the session row the tokens will be bound to.
// Issuance without a session is never allowed, so any insert failure is
// fatal for the whole login.
func (i *TokenIssuer) createSession(ctx context.Context, kind domain.PrincipalKind, principalID string, client ClientInfo) (*domain.Session, error) {
	aud := strings.ToLower(strings.TrimSpace(client.Audience))
	if aud == "" {
		aud = strings.ToLower(i.cfg.Audience)
	}

	now := i.now()
	session := &domain.Session{
		ID:            uuid.NewString(),
		PrincipalKind: kind,
		PrincipalID:   principalID,
		Audience:      aud,
		IPAddress:     client.IPAddress,
		UserAgent:     client.UserAgent,
		CreatedAt:     now,
		LastSeenAt:    now,
		ExpiresAt:     now.Add(i.cfg.RefreshTTL),
		IsActive:      true,
	}
	if err := i.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreateFailed, err)
	}
	return session, nil
}
