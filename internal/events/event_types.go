package events

import (
	"time"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionCreated         EventType = "session_created"
	EventSessionRevoked         EventType = "session_revoked"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Actor encapsulates the principal behind an event.
type Actor struct {
	Kind        domain.PrincipalKind `json:"kind"`
	PrincipalID string               `json:"principal_id"`
}

// Event represents an auth event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionCreatedPayload payload.
type SessionCreatedPayload struct {
	Audience string    `json:"audience"`
	Mobile   bool      `json:"mobile"`
	Expires  time.Time `json:"expires"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	Reason string `json:"reason"`
}

// PasswordResetRequestedPayload payload. The code rides on the event so
// the notification pipeline can deliver it; it is never returned to the
// caller.
type PasswordResetRequestedPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
