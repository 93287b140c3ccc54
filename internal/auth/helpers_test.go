package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Issuer:        "test-issuer",
		Audience:      "web",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Leeway:        60 * time.Second,
	}
}

// fakeSessionRepo is an in-memory repository.SessionRepository.
type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	insertErr error
	deleted   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Insert(_ context.Context, session *domain.Session) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		r.deleted++
	}
	return nil
}

func (r *fakeSessionRepo) DeleteByPrincipal(_ context.Context, kind domain.PrincipalKind, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.PrincipalKind == kind && session.PrincipalID == principalID {
			delete(r.sessions, id)
			r.deleted++
		}
	}
	return nil
}

func (r *fakeSessionRepo) ListActiveByPrincipal(_ context.Context, kind domain.PrincipalKind, principalID string) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	now := time.Now()
	for _, session := range r.sessions {
		if session.PrincipalKind == kind && session.PrincipalID == principalID && session.Usable(now) {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) TouchLastSeen(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.LastSeenAt = time.Now()
	}
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// fakePrincipals is an in-memory PrincipalRepository.
type fakePrincipals struct {
	users  map[string]*domain.User
	admins map[string]*domain.Admin
}

func newFakePrincipals() *fakePrincipals {
	return &fakePrincipals{
		users:  make(map[string]*domain.User),
		admins: make(map[string]*domain.Admin),
	}
}

func (r *fakePrincipals) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakePrincipals) GetAdminByID(_ context.Context, id string) (*domain.Admin, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return admin, nil
}
