package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// SessionRepository is the single authoritative store for login sessions.
type SessionRepository interface {
	Insert(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByPrincipal(ctx context.Context, kind domain.PrincipalKind, principalID string) error
	ListActiveByPrincipal(ctx context.Context, kind domain.PrincipalKind, principalID string) ([]*domain.Session, error)
	TouchLastSeen(ctx context.Context, id string) error
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Insert(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (id, principal_kind, principal_id, audience, ip_address, user_agent, last_seen_at, expires_at, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		session.ID,
		session.PrincipalKind,
		session.PrincipalID,
		session.Audience,
		session.IPAddress,
		session.UserAgent,
		session.LastSeenAt,
		session.ExpiresAt,
		session.IsActive,
	).Scan(&session.CreatedAt)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
        SELECT id, principal_kind, principal_id, audience, ip_address, user_agent,
               created_at, last_seen_at, expires_at, is_active, deleted_at
        FROM sessions WHERE id=$1`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.PrincipalKind,
		&session.PrincipalID,
		&session.Audience,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.ExpiresAt,
		&session.IsActive,
		&session.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteByID removes the session row. Deleting an already-deleted session
// is a no-op, which keeps expire-on-detect idempotent under concurrency.
func (r *sessionRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *sessionRepository) DeleteByPrincipal(ctx context.Context, kind domain.PrincipalKind, principalID string) error {
	const query = `DELETE FROM sessions WHERE principal_kind=$1 AND principal_id=$2`
	_, err := r.pool.Exec(ctx, query, kind, principalID)
	return err
}

func (r *sessionRepository) ListActiveByPrincipal(ctx context.Context, kind domain.PrincipalKind, principalID string) ([]*domain.Session, error) {
	const query = `
        SELECT id, principal_kind, principal_id, audience, ip_address, user_agent,
               created_at, last_seen_at, expires_at, is_active, deleted_at
        FROM sessions
        WHERE principal_kind=$1 AND principal_id=$2 AND is_active=TRUE AND deleted_at IS NULL AND expires_at > NOW()
        ORDER BY last_seen_at DESC`

	rows, err := r.pool.Query(ctx, query, kind, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.ID,
			&session.PrincipalKind,
			&session.PrincipalID,
			&session.Audience,
			&session.IPAddress,
			&session.UserAgent,
			&session.CreatedAt,
			&session.LastSeenAt,
			&session.ExpiresAt,
			&session.IsActive,
			&session.DeletedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) TouchLastSeen(ctx context.Context, id string) error {
	const query = `UPDATE sessions SET last_seen_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
