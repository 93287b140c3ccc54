package domain

import "time"

// PrincipalKind differentiates the two token-bearing principal kinds.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

// Session is one authenticated login instance. Every issued token is bound
// to a session row via its session claim; deleting the row revokes the
// token regardless of its own expiry.
type Session struct {
	ID            string
	PrincipalKind PrincipalKind
	PrincipalID   string
	Audience      string
	IPAddress     string
	UserAgent     string
	CreatedAt     time.Time
	LastSeenAt    time.Time
	ExpiresAt     time.Time
	IsActive      bool
	DeletedAt     *time.Time
}

// Usable reports whether the session is still valid at the given instant.
// A session that fails any of these checks is terminal: it can only be
// replaced by a new login, never resumed.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && s.DeletedAt == nil && now.Before(s.ExpiresAt)
}
