package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-auth-service/internal/auth"
	"github.com/spec-kit/transit-auth-service/internal/repository"
	"github.com/spec-kit/transit-auth-service/internal/service"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// authErrorMappings translates each failure kind of the token/session
// subsystem to its transport response. Every kind gets its own code so
// clients can distinguish "refresh" from "re-authenticate" from
// "insufficient privilege"; unclassified failures fall through to
// INTERNAL_ERROR and are never echoed to the caller.
var authErrorMappings = []struct {
	sentinel error
	code     string
	message  string
	status   int
}{
	{auth.ErrMalformedToken, "TOKEN_MALFORMED", "invalid token, please authenticate with valid credentials", http.StatusUnauthorized},
	{auth.ErrExpiredToken, "TOKEN_EXPIRED", "token has expired, please refresh your token or re-authenticate", http.StatusUnauthorized},
	{auth.ErrInvalidSignature, "TOKEN_SIGNATURE_INVALID", "invalid token, please authenticate with valid credentials", http.StatusUnauthorized},
	{auth.ErrWrongTokenType, "TOKEN_WRONG_TYPE", "token type not permitted for this operation", http.StatusUnauthorized},
	{auth.ErrWrongPurpose, "TOKEN_WRONG_PURPOSE", "token purpose not permitted for this operation", http.StatusUnauthorized},
	{auth.ErrMissingSubject, "TOKEN_MISSING_SUBJECT", "could not validate credentials, please re-authenticate", http.StatusUnauthorized},
	{auth.ErrSessionNotFound, "SESSION_NOT_FOUND", "session not found or terminated, please log in again", http.StatusForbidden},
	{auth.ErrSessionExpired, "SESSION_EXPIRED", "session has expired, please log in again", http.StatusForbidden},
	{auth.ErrSessionInactive, "SESSION_INACTIVE", "session is inactive, please log in again", http.StatusForbidden},
	{auth.ErrPrincipalNotFound, "PRINCIPAL_NOT_FOUND", "account not found, it may have been deleted", http.StatusNotFound},
	{auth.ErrSessionCreateFailed, "SESSION_CREATE_FAILED", "login failed, we couldn't create a session for your account", http.StatusInternalServerError},
	{service.ErrInvalidCredentials, "INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized},
	{service.ErrAccountSuspended, "ACCOUNT_SUSPENDED", "account suspended", http.StatusForbidden},
	{service.ErrAccountInactive, "ACCOUNT_INACTIVE", "account inactive", http.StatusForbidden},
	{service.ErrEmailTaken, "EMAIL_TAKEN", "email already registered", http.StatusConflict},
	{service.ErrUnknownEmail, "ACCOUNT_NOT_FOUND", "no account for this email", http.StatusNotFound},
	{service.ErrSessionNotOwned, "SESSION_NOT_OWNED", "session does not belong to the caller", http.StatusForbidden},
	{repository.ErrOTPNotFound, "OTP_INVALID", "reset code is invalid or has expired", http.StatusUnauthorized},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, mapping := range authErrorMappings {
		if errors.Is(err, mapping.sentinel) {
			return &DomainError{
				Code:       mapping.code,
				Message:    mapping.message,
				HTTPStatus: mapping.status,
				Err:        err,
			}
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError as an error value.
func MapError(err error) error {
	return ToDomainError(err)
}
