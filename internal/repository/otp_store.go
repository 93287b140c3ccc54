package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no valid code exists for the email.
var ErrOTPNotFound = errors.New("otp code not found or expired")

const otpKeyPrefix = "auth:otp:"

// OTPStore keeps short-lived password-reset codes in Redis. Codes expire
// on their own via the key TTL and are consumed on first successful check.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore builds the store.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

// Issue generates a six-digit code for the email, replacing any previous
// one, and returns it for delivery.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	key := otpKeyPrefix + strings.ToLower(email)
	if err := s.client.Set(ctx, key, code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Consume checks the code for the email and deletes it on match. A wrong
// code leaves the stored one in place until its TTL runs out.
func (s *OTPStore) Consume(ctx context.Context, email, code string) error {
	key := otpKeyPrefix + strings.ToLower(email)
	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPNotFound
		}
		return err
	}
	if stored != code {
		return ErrOTPNotFound
	}
	return s.client.Del(ctx, key).Err()
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
