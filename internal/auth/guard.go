package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-auth-service/internal/domain"
	"github.com/spec-kit/transit-auth-service/internal/repository"
)

// SessionGuard resolves the session a token is bound to and enforces its
// lifecycle state. Every access and refresh verification passes through
// it, so deleting a session revokes its tokens immediately.
type SessionGuard struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewSessionGuard builds a guard over the session store.
func NewSessionGuard(sessions repository.SessionRepository) *SessionGuard {
	return &SessionGuard{sessions: sessions, now: time.Now}
}

// Validate loads the session and checks its lifecycle. An expired session
// is deleted before ErrSessionExpired is reported so that no concurrent
// call can still validate it; the deletion is idempotent, so two racing
// detections both fail cleanly. Inactive or soft-deleted sessions are
// already terminal and get no side effect.
func (g *SessionGuard) Validate(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	now := g.now()
	if session.Usable(now) {
		return session, nil
	}
	if !now.Before(session.ExpiresAt) {
		if err := g.sessions.DeleteByID(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return nil, ErrSessionInactive
}

// Revoke force-expires a session regardless of its current state.
func (g *SessionGuard) Revoke(ctx context.Context, sessionID string) error {
	return g.sessions.DeleteByID(ctx, sessionID)
}
