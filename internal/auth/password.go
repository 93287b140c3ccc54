package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashService hashes and verifies passwords with bcrypt. Inputs longer
// than bcrypt's 72-byte limit are pre-hashed with SHA-256 so the whole
// password still contributes to the digest.
type HashService struct {
	cost int
}

// NewHashService builds the service with the configured cost.
func NewHashService(cost int) *HashService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &HashService{cost: cost}
}

// Hash hashes a plaintext password.
func (h *HashService) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(normalizePassword(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash.
func (h *HashService) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), normalizePassword(plain)) == nil
}

func normalizePassword(plain string) []byte {
	raw := []byte(plain)
	if len(raw) <= 72 {
		return raw
	}
	sum := sha256.Sum256(raw)
	return []byte(hex.EncodeToString(sum[:]))
}
