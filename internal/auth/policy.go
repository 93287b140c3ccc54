package auth

import (
	"fmt"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// VerificationMode selects the set of purposes a verification call will
// admit. Exactly one mode applies per call; illegal flag combinations of
// the kind a bag of booleans would allow cannot be expressed.
type VerificationMode int

const (
	ModeDefault VerificationMode = iota
	ModePasswordReset
	ModeTwoFactor
	ModeRefresh
	ModeReadOnly
	ModeNewPassword
)

func (m VerificationMode) String() string {
	switch m {
	case ModePasswordReset:
		return "password-reset"
	case ModeTwoFactor:
		return "two-factor"
	case ModeRefresh:
		return "refresh"
	case ModeReadOnly:
		return "read-only"
	case ModeNewPassword:
		return "new-password"
	default:
		return "default"
	}
}

// ClaimPolicy accepts or rejects a decoded claim set against a
// verification request.
type ClaimPolicy struct{}

// AllowedPurposes returns the purpose admission set for a principal kind
// and mode. The user and admin tables differ deliberately: address_book
// and read-only exist only on the user track, set-new-password only on the
// admin track. An empty set means the mode is not available for the kind.
func (ClaimPolicy) AllowedPurposes(kind domain.PrincipalKind, mode VerificationMode) []Purpose {
	switch mode {
	case ModePasswordReset:
		return []Purpose{PurposeResetPassword}
	case ModeTwoFactor:
		if kind == domain.PrincipalUser {
			return []Purpose{PurposeTwoFactorVerification, PurposeGeneral, PurposeTwoFactor, PurposeAddressBook}
		}
		return []Purpose{PurposeTwoFactorVerification, PurposeGeneral, PurposeTwoFactor}
	case ModeRefresh:
		return []Purpose{PurposeGeneral, PurposeTwoFactor}
	case ModeReadOnly:
		if kind == domain.PrincipalUser {
			return []Purpose{PurposeReadOnly}
		}
		return nil
	case ModeNewPassword:
		if kind == domain.PrincipalAdmin {
			return []Purpose{PurposeSetNewPassword}
		}
		return nil
	default:
		return []Purpose{PurposeGeneral}
	}
}

// Check validates token type, purpose, and subject presence, in that
// order. The expected type is {kind}-{access|refresh} and must match
// exactly; the purpose must be a member of the admission set for the mode.
func (p ClaimPolicy) Check(claims *Claims, kind domain.PrincipalKind, mode VerificationMode) error {
	expected := TokenTypeFor(kind, mode == ModeRefresh)
	if claims.TokenType != expected {
		return fmt.Errorf("%w: expected %q, got %q", ErrWrongTokenType, expected, claims.TokenType)
	}

	purpose := claims.Purpose
	if purpose == "" {
		purpose = PurposeGeneral
	}
	allowed := p.AllowedPurposes(kind, mode)
	permitted := false
	for _, candidate := range allowed {
		if purpose == candidate {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("%w: mode %s does not admit purpose %q", ErrWrongPurpose, mode, purpose)
	}

	if claims.Subject == "" {
		return ErrMissingSubject
	}
	return nil
}
