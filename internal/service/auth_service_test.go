package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/domain"
	"github.com/spec-kit/transit-auth-service/internal/events"
)

func registerRider(t *testing.T, f *fixture) (*domain.User, *auth.TokenPair) {
	t.Helper()
	user, pair, err := f.svc.RegisterUser(context.Background(), "Test Rider", "rider@example.com", "+15550100", "s3cret-passw0rd", webClient())
	require.NoError(t, err)
	return user, pair
}

func seedAdmin(t *testing.T, f *fixture, active bool) *domain.Admin {
	t.Helper()
	hash := auth.NewHashService(4)
	hashed, err := hash.Hash("admin-passw0rd")
	require.NoError(t, err)
	admin := &domain.Admin{
		FirstName:    "Ada",
		LastName:     "Operator",
		Email:        "ops@example.com",
		PasswordHash: hashed,
		Active:       active,
	}
	require.NoError(t, f.admins.Create(context.Background(), admin))
	return admin
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and logs it in", func(t *testing.T) {
		f := newFixture()
		user, pair := registerRider(t, f)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, domain.UserStatusActive, user.Status)
		assert.NotEmpty(t, pair.AccessToken)
		assert.Equal(t, 1, f.sessions.count())

		identity, err := f.verifier.VerifyUser(ctx, pair.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.PrincipalID())

		created := f.dispatcher.ofType(events.EventSessionCreated)
		require.Len(t, created, 1)
		assert.Equal(t, user.ID, created[0].Actor.PrincipalID)
	})

	t.Run("email is normalized and duplicates rejected", func(t *testing.T) {
		f := newFixture()
		registerRider(t, f)

		_, _, err := f.svc.RegisterUser(ctx, "Other Rider", "  RIDER@example.com ", "", "another-pass", webClient())
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLoginUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		f := newFixture()
		registered, _ := registerRider(t, f)

		user, pair, err := f.svc.LoginUser(ctx, "rider@example.com", "s3cret-passw0rd", webClient())
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, 2, f.sessions.count(), "login opens a second session")
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture()
		registerRider(t, f)

		_, _, err := f.svc.LoginUser(ctx, "rider@example.com", "wrong", webClient())
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email indistinguishable from wrong password", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.LoginUser(ctx, "nobody@example.com", "whatever", webClient())
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		f := newFixture()
		user, _ := registerRider(t, f)
		user.Status = domain.UserStatusSuspended
		require.NoError(t, f.users.Update(ctx, user))

		_, _, err := f.svc.LoginUser(ctx, "rider@example.com", "s3cret-passw0rd", webClient())
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})
}

func TestLoginAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		f := newFixture()
		seeded := seedAdmin(t, f, true)

		admin, pair, err := f.svc.LoginAdmin(ctx, "ops@example.com", "admin-passw0rd", webClient())
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, admin.ID)

		identity, err := f.verifier.VerifyAdmin(ctx, pair.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)
		assert.Equal(t, domain.PrincipalAdmin, identity.Kind)
	})

	t.Run("inactive admin", func(t *testing.T) {
		f := newFixture()
		seedAdmin(t, f, false)

		_, _, err := f.svc.LoginAdmin(ctx, "ops@example.com", "admin-passw0rd", webClient())
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestRefreshUser(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh keeps the session", func(t *testing.T) {
		f := newFixture()
		user, pair := registerRider(t, f)

		fresh, err := f.svc.RefreshUser(ctx, pair.RefreshToken, "web")
		require.NoError(t, err)
		assert.Equal(t, 1, f.sessions.count(), "refresh reuses the login session")

		identity, err := f.verifier.VerifyUser(ctx, fresh.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.PrincipalID())
	})

	t.Run("access token rejected", func(t *testing.T) {
		f := newFixture()
		_, pair := registerRider(t, f)

		_, err := f.svc.RefreshUser(ctx, pair.AccessToken, "web")
		assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	})

	t.Run("refresh after logout fails", func(t *testing.T) {
		f := newFixture()
		_, pair := registerRider(t, f)
		require.NoError(t, f.svc.Logout(ctx, pair.AccessToken, "web"))

		_, err := f.svc.RefreshUser(ctx, pair.RefreshToken, "web")
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, pair := registerRider(t, f)

	require.NoError(t, f.svc.Logout(ctx, pair.AccessToken, "web"))
	assert.Equal(t, 0, f.sessions.count())

	revoked := f.dispatcher.ofType(events.EventSessionRevoked)
	require.Len(t, revoked, 1)

	// Both tokens of the pair are dead once the session is gone.
	_, err := f.verifier.VerifyUser(ctx, pair.AccessToken, auth.ModeDefault, "web")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("list and revoke own session", func(t *testing.T) {
		f := newFixture()
		_, pair := registerRider(t, f)
		_, _, err := f.svc.LoginUser(ctx, "rider@example.com", "s3cret-passw0rd", mobileClient())
		require.NoError(t, err)

		identity, err := f.verifier.VerifyUser(ctx, pair.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)

		listed, err := f.svc.ListSessions(ctx, identity)
		require.NoError(t, err)
		assert.Len(t, listed, 2)

		var other string
		for _, session := range listed {
			if session.ID != identity.SessionID {
				other = session.ID
			}
		}
		require.NotEmpty(t, other)
		require.NoError(t, f.svc.RevokeSession(ctx, identity, other))

		listed, err = f.svc.ListSessions(ctx, identity)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("cannot revoke another principal's session", func(t *testing.T) {
		f := newFixture()
		_, pair := registerRider(t, f)
		seedAdmin(t, f, true)
		_, _, err := f.svc.LoginAdmin(ctx, "ops@example.com", "admin-passw0rd", webClient())
		require.NoError(t, err)

		identity, err := f.verifier.VerifyUser(ctx, pair.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)

		var adminSession string
		f.sessions.mu.Lock()
		for id, session := range f.sessions.sessions {
			if session.PrincipalKind == domain.PrincipalAdmin {
				adminSession = id
			}
		}
		f.sessions.mu.Unlock()
		require.NotEmpty(t, adminSession)

		err = f.svc.RevokeSession(ctx, identity, adminSession)
		assert.ErrorIs(t, err, ErrSessionNotOwned)
	})

	t.Run("revoking an unknown session", func(t *testing.T) {
		f := newFixture()
		_, pair := registerRider(t, f)
		identity, err := f.verifier.VerifyUser(ctx, pair.AccessToken, auth.ModeDefault, "web")
		require.NoError(t, err)

		err = f.svc.RevokeSession(ctx, identity, "no-such-session")
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("request emits the code on the event pipeline", func(t *testing.T) {
		f := newFixture()
		registerRider(t, f)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, "RIDER@example.com"))

		requested := f.dispatcher.ofType(events.EventPasswordResetRequested)
		require.Len(t, requested, 1)
		payload, ok := requested[0].Payload.(events.PasswordResetRequestedPayload)
		require.True(t, ok)
		assert.Equal(t, "rider@example.com", payload.Email)
		assert.NotEmpty(t, payload.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture()
		err := f.svc.RequestPasswordReset(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUnknownEmail)
	})

	t.Run("confirm replaces the password and kills every session", func(t *testing.T) {
		f := newFixture()
		registerRider(t, f)
		_, _, err := f.svc.LoginUser(ctx, "rider@example.com", "s3cret-passw0rd", mobileClient())
		require.NoError(t, err)
		require.Equal(t, 2, f.sessions.count())

		require.NoError(t, f.svc.RequestPasswordReset(ctx, "rider@example.com"))
		require.NoError(t, f.svc.ConfirmPasswordReset(ctx, "rider@example.com", "123456", "new-passw0rd"))

		assert.Equal(t, 0, f.sessions.count(), "reset revokes all sessions")

		_, _, err = f.svc.LoginUser(ctx, "rider@example.com", "s3cret-passw0rd", webClient())
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = f.svc.LoginUser(ctx, "rider@example.com", "new-passw0rd", webClient())
		assert.NoError(t, err)

		changed := f.dispatcher.ofType(events.EventPasswordChanged)
		assert.Len(t, changed, 1)
	})

	t.Run("wrong code is rejected and stays unconsumed", func(t *testing.T) {
		f := newFixture()
		registerRider(t, f)
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "rider@example.com"))

		err := f.svc.ConfirmPasswordReset(ctx, "rider@example.com", "000000", "new-passw0rd")
		assert.ErrorIs(t, err, errOTPMismatch)

		// The issued code still works afterwards.
		assert.NoError(t, f.svc.ConfirmPasswordReset(ctx, "rider@example.com", "123456", "new-passw0rd"))
	})

	t.Run("admin reset by email", func(t *testing.T) {
		f := newFixture()
		seedAdmin(t, f, true)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, "ops@example.com"))
		require.NoError(t, f.svc.ConfirmPasswordReset(ctx, "ops@example.com", "123456", "new-admin-pass"))

		_, _, err := f.svc.LoginAdmin(ctx, "ops@example.com", "new-admin-pass", webClient())
		assert.NoError(t, err)
	})
}
