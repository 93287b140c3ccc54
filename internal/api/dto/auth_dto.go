package dto

import (
	"time"

	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Audience string `json:"audience"`
	Mobile   bool   `json:"mobile"`
}

// UserLoginRequest payload for user login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Audience string `json:"audience"`
	Mobile   bool   `json:"mobile"`
}

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Audience string `json:"audience"`
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Audience     string `json:"audience"`
}

// PasswordResetRequest starts the OTP flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest finishes the OTP flow.
type PasswordResetConfirmRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// TokenPairResponse standard response for issuance endpoints.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// NewTokenPairResponse converts an issued pair.
func NewTokenPairResponse(pair *auth.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// NewUserResponse converts a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, FullName: user.FullName, Email: user.Email, Phone: user.Phone}
}

// AdminResponse is the public view of an admin.
type AdminResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// NewAdminResponse converts a domain admin.
func NewAdminResponse(admin *domain.Admin) AdminResponse {
	return AdminResponse{ID: admin.ID, FirstName: admin.FirstName, LastName: admin.LastName, Email: admin.Email}
}

// SessionResponse is the public view of a session.
type SessionResponse struct {
	ID         string    `json:"id"`
	Audience   string    `json:"audience"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewSessionResponse converts a domain session.
func NewSessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:         session.ID,
		Audience:   session.Audience,
		IPAddress:  session.IPAddress,
		UserAgent:  session.UserAgent,
		CreatedAt:  session.CreatedAt,
		LastSeenAt: session.LastSeenAt,
		ExpiresAt:  session.ExpiresAt,
	}
}
