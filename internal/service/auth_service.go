package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/domain"
	"github.com/spec-kit/transit-auth-service/internal/events"
	"github.com/spec-kit/transit-auth-service/internal/repository"
)

// Login-flow errors that are not part of the token taxonomy.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrAccountInactive    = errors.New("account inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownEmail       = errors.New("no account for this email")
	ErrSessionNotOwned    = errors.New("session does not belong to the caller")
)

// OTPStore issues and consumes one-time password-reset codes.
// *repository.OTPStore is the Redis-backed implementation.
type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, code string) error
}

// AuthService coordinates registration, login, refresh, logout, and
// password-reset flows on top of the token issuer and verifier.
type AuthService struct {
	users      repository.UserRepository
	admins     repository.AdminRepository
	sessions   repository.SessionRepository
	otp        OTPStore
	issuer     *auth.TokenIssuer
	verifier   *auth.TokenVerifier
	guard      *auth.SessionGuard
	hash       *auth.HashService
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates what the service needs.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	AdminRepo   repository.AdminRepository
	SessionRepo repository.SessionRepository
	OTPStore    OTPStore
	Issuer      *auth.TokenIssuer
	Verifier    *auth.TokenVerifier
	Guard       *auth.SessionGuard
	Hash        *auth.HashService
	Dispatcher  events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		admins:     deps.AdminRepo,
		sessions:   deps.SessionRepo,
		otp:        deps.OTPStore,
		issuer:     deps.Issuer,
		verifier:   deps.Verifier,
		guard:      deps.Guard,
		hash:       deps.Hash,
		dispatcher: deps.Dispatcher,
	}
}

// RegisterUser creates a new end-user account and logs it in.
func (s *AuthService) RegisterUser(ctx context.Context, fullName, email, phone, password string, client auth.ClientInfo) (*domain.User, *auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hashed, err := s.hash.Hash(password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		PasswordHash:   hashed,
		Status:         domain.UserStatusActive,
		DeletionStatus: domain.DeletionRequestNone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, session, err := s.issuer.IssueUserPair(ctx, user, client, auth.PurposeGeneral)
	if err != nil {
		return nil, nil, err
	}
	s.publishSessionCreated(ctx, session, client.Mobile)
	return user, pair, nil
}

// LoginUser authenticates an end-user and issues a fresh pair bound to a
// new session.
func (s *AuthService) LoginUser(ctx context.Context, email, password string, client auth.ClientInfo) (*domain.User, *auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !s.hash.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status == domain.UserStatusSuspended {
		return nil, nil, ErrAccountSuspended
	}

	pair, session, err := s.issuer.IssueUserPair(ctx, user, client, auth.PurposeGeneral)
	if err != nil {
		return nil, nil, err
	}
	s.publishSessionCreated(ctx, session, client.Mobile)
	return user, pair, nil
}

// LoginAdmin authenticates an administrative operator.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string, client auth.ClientInfo) (*domain.Admin, *auth.TokenPair, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !s.hash.Verify(password, admin.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !admin.Active {
		return nil, nil, ErrAccountInactive
	}

	pair, session, err := s.issuer.IssueAdminPair(ctx, admin, client, auth.PurposeGeneral)
	if err != nil {
		return nil, nil, err
	}
	s.publishSessionCreated(ctx, session, false)
	return admin, pair, nil
}

// RefreshUser exchanges a valid user refresh token for a fresh pair bound
// to the same session, refreshing the session's last-seen timestamp.
func (s *AuthService) RefreshUser(ctx context.Context, refreshToken, audience string) (*auth.TokenPair, error) {
	identity, err := s.verifier.VerifyUser(ctx, refreshToken, auth.ModeRefresh, audience)
	if err != nil {
		return nil, err
	}
	return s.refreshPair(ctx, identity, identity.User.Email, identity.User.FullName)
}

// RefreshAdmin is the admin-track analogue of RefreshUser.
func (s *AuthService) RefreshAdmin(ctx context.Context, refreshToken, audience string) (*auth.TokenPair, error) {
	identity, err := s.verifier.VerifyAdmin(ctx, refreshToken, auth.ModeRefresh, audience)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(identity.Admin.FirstName + " " + identity.Admin.LastName)
	return s.refreshPair(ctx, identity, identity.Admin.Email, name)
}

func (s *AuthService) refreshPair(ctx context.Context, identity *auth.Identity, email, name string) (*auth.TokenPair, error) {
	if err := s.sessions.TouchLastSeen(ctx, identity.SessionID); err != nil {
		return nil, err
	}
	return s.issuer.PairForSession(identity.Session, identity.PrincipalID(), email, name, auth.PurposeGeneral, false)
}

// Logout verifies the presented token and destroys its session, revoking
// both tokens of the pair at once.
func (s *AuthService) Logout(ctx context.Context, token, audience string) error {
	identity, err := s.verifier.VerifyEither(ctx, token, auth.ModeDefault, audience)
	if err != nil {
		return err
	}
	if err := s.guard.Revoke(ctx, identity.SessionID); err != nil {
		return err
	}
	s.publishSessionRevoked(ctx, identity.Kind, identity.PrincipalID(), identity.SessionID, "logout")
	return nil
}

// ListSessions returns the caller's active sessions.
func (s *AuthService) ListSessions(ctx context.Context, identity *auth.Identity) ([]*domain.Session, error) {
	return s.sessions.ListActiveByPrincipal(ctx, identity.Kind, identity.PrincipalID())
}

// RevokeSession deletes one of the caller's sessions by id. Revoking a
// session invalidates every token bound to it immediately, regardless of
// token expiry.
func (s *AuthService) RevokeSession(ctx context.Context, identity *auth.Identity, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrSessionNotFound
		}
		return err
	}
	if session.PrincipalKind != identity.Kind || session.PrincipalID != identity.PrincipalID() {
		return ErrSessionNotOwned
	}
	if err := s.guard.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.publishSessionRevoked(ctx, identity.Kind, identity.PrincipalID(), sessionID, "revoked")
	return nil
}

// RequestPasswordReset issues a one-time code for the account behind the
// email. The code travels on the notification pipeline, never in the
// response.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	kind, principalID, err := s.principalByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordResetRequested,
		Actor:     events.Actor{Kind: kind, PrincipalID: principalID},
		Timestamp: time.Now().UTC(),
		Payload:   events.PasswordResetRequestedPayload{Email: email, Code: code},
	})
	return nil
}

// ConfirmPasswordReset consumes the code, stores the new hash, and revokes
// every session of the principal so stolen tokens die with the old
// password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.otp.Consume(ctx, email, code); err != nil {
		return err
	}

	hashed, err := s.hash.Hash(newPassword)
	if err != nil {
		return err
	}

	kind, principalID, err := s.setPassword(ctx, email, hashed)
	if err != nil {
		return err
	}
	if err := s.sessions.DeleteByPrincipal(ctx, kind, principalID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordChanged,
		Actor:     events.Actor{Kind: kind, PrincipalID: principalID},
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// principalByEmail resolves an email to whichever principal kind owns it,
// users first.
func (s *AuthService) principalByEmail(ctx context.Context, email string) (domain.PrincipalKind, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.PrincipalUser, user.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", "", err
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return domain.PrincipalAdmin, admin.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", "", err
	}
	return "", "", ErrUnknownEmail
}

func (s *AuthService) setPassword(ctx context.Context, email, hashed string) (domain.PrincipalKind, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		user.PasswordHash = hashed
		if err := s.users.Update(ctx, user); err != nil {
			return "", "", err
		}
		return domain.PrincipalUser, user.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", "", err
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrUnknownEmail
		}
		return "", "", err
	}
	admin.PasswordHash = hashed
	if err := s.admins.Update(ctx, admin); err != nil {
		return "", "", err
	}
	return domain.PrincipalAdmin, admin.ID, nil
}

func (s *AuthService) publishSessionCreated(ctx context.Context, session *domain.Session, mobile bool) {
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionCreated,
		SessionID: session.ID,
		Actor:     events.Actor{Kind: session.PrincipalKind, PrincipalID: session.PrincipalID},
		Timestamp: time.Now().UTC(),
		Payload:   events.SessionCreatedPayload{Audience: session.Audience, Mobile: mobile, Expires: session.ExpiresAt},
	})
}

func (s *AuthService) publishSessionRevoked(ctx context.Context, kind domain.PrincipalKind, principalID, sessionID, reason string) {
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionRevoked,
		SessionID: sessionID,
		Actor:     events.Actor{Kind: kind, PrincipalID: principalID},
		Timestamp: time.Now().UTC(),
		Payload:   events.SessionRevokedPayload{Reason: reason},
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
