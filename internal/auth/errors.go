package auth

import "errors"

// Failure kinds surfaced by the token and session subsystem. Each kind maps
// to a distinct user-facing remediation at the HTTP boundary, so none of
// them is ever swallowed or collapsed into another.
var (
	// ErrMalformedToken covers tokens that cannot be parsed or whose
	// registered claims (issuer, audience, missing expiry) are invalid.
	ErrMalformedToken = errors.New("malformed token")

	// ErrExpiredToken is reported separately from signature failures so
	// callers can offer "refresh" instead of "re-authenticate".
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidSignature covers signature verification failures,
	// including tokens signed under the wrong track secret.
	ErrInvalidSignature = errors.New("invalid token signature")

	ErrWrongTokenType = errors.New("token type not permitted for this operation")
	ErrWrongPurpose   = errors.New("token purpose not permitted for this operation")

	// ErrMissingSubject indicates a malformed issuance rather than misuse
	// of a valid token.
	ErrMissingSubject = errors.New("token is missing its subject claim")

	ErrSessionNotFound = errors.New("session not found or terminated")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInactive = errors.New("session inactive")

	// ErrPrincipalNotFound means the token verified but its subject no
	// longer exists server-side (deleted account, data drift).
	ErrPrincipalNotFound = errors.New("principal not found")

	ErrSessionCreateFailed = errors.New("could not create session")
)
