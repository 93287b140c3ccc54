package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:             "user-1",
		FullName:       "Test Rider",
		Email:          "rider@example.com",
		Status:         domain.UserStatusActive,
		DeletionStatus: domain.DeletionRequestNone,
	}
}

func testAdmin() *domain.Admin {
	return &domain.Admin{
		ID:        "admin-1",
		FirstName: "Ada",
		LastName:  "Operator",
		Email:     "ops@example.com",
		Active:    true,
	}
}

func TestIssueUserPair(t *testing.T) {
	ctx := context.Background()
	cfg := testTokenConfig()

	t.Run("binds both tokens to a fresh session", func(t *testing.T) {
		repo := newFakeSessionRepo()
		codec := NewTokenCodec(cfg)
		issuer := NewTokenIssuer(repo, codec, cfg)

		client := ClientInfo{Audience: "web", IPAddress: "203.0.113.7", UserAgent: "test-agent/1.0"}
		pair, session, err := issuer.IssueUserPair(ctx, testUser(), client, PurposeGeneral)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, 1, repo.count())
		assert.Equal(t, "203.0.113.7", session.IPAddress)
		assert.Equal(t, "test-agent/1.0", session.UserAgent)
		assert.Equal(t, int64(cfg.AccessTTL.Seconds()), pair.ExpiresIn)

		access, err := codec.Decode(pair.AccessToken, TrackAccess, "web")
		require.NoError(t, err)
		assert.Equal(t, TokenTypeUserAccess, access.TokenType)
		assert.Equal(t, session.ID, access.SessionID)
		assert.Equal(t, "user-1", access.Subject)
		assert.Equal(t, PurposeGeneral, access.Purpose)

		refresh, err := codec.Decode(pair.RefreshToken, TrackRefresh, "web")
		require.NoError(t, err)
		assert.Equal(t, TokenTypeUserRefresh, refresh.TokenType)
		assert.Equal(t, session.ID, refresh.SessionID)
	})

	t.Run("audience defaults and is lower-cased", func(t *testing.T) {
		repo := newFakeSessionRepo()
		issuer := NewTokenIssuer(repo, NewTokenCodec(cfg), cfg)

		_, session, err := issuer.IssueUserPair(ctx, testUser(), ClientInfo{}, PurposeGeneral)
		require.NoError(t, err)
		assert.Equal(t, "web", session.Audience)

		_, session, err = issuer.IssueUserPair(ctx, testUser(), ClientInfo{Audience: "  MOBILE "}, PurposeGeneral)
		require.NoError(t, err)
		assert.Equal(t, "mobile", session.Audience)
	})

	t.Run("pending deletion downgrades purpose to read-only", func(t *testing.T) {
		repo := newFakeSessionRepo()
		codec := NewTokenCodec(cfg)
		issuer := NewTokenIssuer(repo, codec, cfg)

		user := testUser()
		user.DeletionStatus = domain.DeletionRequestPending

		pair, _, err := issuer.IssueUserPair(ctx, user, ClientInfo{Audience: "web"}, PurposeGeneral)
		require.NoError(t, err)

		access, err := codec.Decode(pair.AccessToken, TrackAccess, "web")
		require.NoError(t, err)
		assert.Equal(t, PurposeReadOnly, access.Purpose)
	})

	t.Run("mobile puts the infinite sentinel on the access token only", func(t *testing.T) {
		repo := newFakeSessionRepo()
		codec := NewTokenCodec(cfg)
		issuer := NewTokenIssuer(repo, codec, cfg)

		pair, _, err := issuer.IssueUserPair(ctx, testUser(), ClientInfo{Audience: "mobile", Mobile: true}, PurposeGeneral)
		require.NoError(t, err)

		access, err := codec.Decode(pair.AccessToken, TrackAccess, "mobile")
		require.NoError(t, err)
		assert.True(t, access.ExpiresAt.Time.Equal(InfiniteExpiry))

		refresh, err := codec.Decode(pair.RefreshToken, TrackRefresh, "mobile")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(cfg.RefreshTTL), refresh.ExpiresAt.Time, time.Minute)
	})

	t.Run("session insert failure is fatal", func(t *testing.T) {
		repo := newFakeSessionRepo()
		repo.insertErr = errors.New("connection refused")
		issuer := NewTokenIssuer(repo, NewTokenCodec(cfg), cfg)

		_, _, err := issuer.IssueUserPair(ctx, testUser(), ClientInfo{Audience: "web"}, PurposeGeneral)
		assert.ErrorIs(t, err, ErrSessionCreateFailed)
	})
}

func TestIssueAdminPair(t *testing.T) {
	ctx := context.Background()
	cfg := testTokenConfig()
	repo := newFakeSessionRepo()
	codec := NewTokenCodec(cfg)
	issuer := NewTokenIssuer(repo, codec, cfg)

	pair, session, err := issuer.IssueAdminPair(ctx, testAdmin(), ClientInfo{Audience: "web"}, PurposeGeneral)
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalAdmin, session.PrincipalKind)

	access, err := codec.Decode(pair.AccessToken, TrackAccess, "web")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdminAccess, access.TokenType)
	assert.Equal(t, "admin-1", access.Subject)
	assert.Equal(t, "Ada Operator", access.Name)
	assert.WithinDuration(t, time.Now().Add(cfg.AccessTTL), access.ExpiresAt.Time, time.Minute)
}

func TestPairForSessionReusesSession(t *testing.T) {
	ctx := context.Background()
	cfg := testTokenConfig()
	repo := newFakeSessionRepo()
	codec := NewTokenCodec(cfg)
	issuer := NewTokenIssuer(repo, codec, cfg)

	_, session, err := issuer.IssueUserPair(ctx, testUser(), ClientInfo{Audience: "web"}, PurposeGeneral)
	require.NoError(t, err)

	pair, err := issuer.PairForSession(session, "user-1", "rider@example.com", "Test Rider", PurposeGeneral, false)
	require.NoError(t, err)

	access, err := codec.Decode(pair.AccessToken, TrackAccess, "web")
	require.NoError(t, err)
	assert.Equal(t, session.ID, access.SessionID)
	assert.Equal(t, 1, repo.count(), "refresh must not create a second session")
}
