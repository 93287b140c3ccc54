package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/domain"
	"github.com/spec-kit/transit-auth-service/internal/events"
)

// fixture wires a full AuthService over in-memory stores with real
// token machinery.
type fixture struct {
	svc        *AuthService
	users      *fakeUserRepo
	admins     *fakeAdminRepo
	sessions   *fakeSessionRepo
	otp        *fakeOTPStore
	dispatcher *recordingDispatcher
	verifier   *auth.TokenVerifier
}

func newFixture() *fixture {
	cfg := auth.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Issuer:        "test-issuer",
		Audience:      "web",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Leeway:        time.Minute,
	}

	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	sessions := newFakeSessionRepo()
	otp := &fakeOTPStore{codes: make(map[string]string)}
	dispatcher := &recordingDispatcher{}

	codec := auth.NewTokenCodec(cfg)
	guard := auth.NewSessionGuard(sessions)
	issuer := auth.NewTokenIssuer(sessions, codec, cfg)
	verifier := auth.NewTokenVerifier(codec, guard, &fakePrincipalLookup{users: users, admins: admins})

	svc := NewAuthService(AuthDependencies{
		UserRepo:    users,
		AdminRepo:   admins,
		SessionRepo: sessions,
		OTPStore:    otp,
		Issuer:      issuer,
		Verifier:    verifier,
		Guard:       guard,
		Hash:        auth.NewHashService(bcrypt.MinCost),
		Dispatcher:  dispatcher,
	})
	return &fixture{
		svc:        svc,
		users:      users,
		admins:     admins,
		sessions:   sessions,
		otp:        otp,
		dispatcher: dispatcher,
		verifier:   verifier,
	}
}

func webClient() auth.ClientInfo {
	return auth.ClientInfo{Audience: "web", IPAddress: "203.0.113.7", UserAgent: "test-agent/1.0"}
}

func mobileClient() auth.ClientInfo {
	return auth.ClientInfo{Audience: "mobile", IPAddress: "203.0.113.8", UserAgent: "test-app/2.0"}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	index map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), index: make(map[string]string)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.byID[user.ID] = &copied
	r.index[user.Email] = user.ID
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.index, stored.Email)
	copied := *user
	copied.UpdatedAt = time.Now()
	r.byID[user.ID] = &copied
	r.index[user.Email] = user.ID
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	id, ok := r.index[email]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

type fakeAdminRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.Admin
	index map[string]string
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byID: make(map[string]*domain.Admin), index: make(map[string]string)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	copied := *admin
	r.byID[admin.ID] = &copied
	r.index[admin.Email] = admin.ID
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[admin.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *admin
	r.byID[admin.ID] = &copied
	r.index[admin.Email] = admin.ID
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *admin
	return &copied, nil
}

func (r *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	id, ok := r.index[email]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

type fakePrincipalLookup struct {
	users  *fakeUserRepo
	admins *fakeAdminRepo
}

func (l *fakePrincipalLookup) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return l.users.GetByID(ctx, id)
}

func (l *fakePrincipalLookup) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	return l.admins.GetByID(ctx, id)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Insert(_ context.Context, session *domain.Session) error {
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
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByPrincipal(_ context.Context, kind domain.PrincipalKind, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.PrincipalKind == kind && session.PrincipalID == principalID {
			delete(r.sessions, id)
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
	session, ok := r.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	session.LastSeenAt = time.Now()
	return nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var errOTPMismatch = errors.New("otp mismatch")

type fakeOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *fakeOTPStore) Issue(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = "123456"
	return "123456", nil
}

func (s *fakeOTPStore) Consume(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[email]
	if !ok || stored != code {
		return errOTPMismatch
	}
	delete(s.codes, email)
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
