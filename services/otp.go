package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix      = "otp:"
	otpAttemptsPrefix = "otp-attempts:"
	otpDigits         = "0123456789"
	otpLength         = 6
	maxOTPAttempts    = 5
)

var (
	ErrOTPNotFound        = errors.New("otp expired or never issued")
	ErrOTPMismatch        = errors.New("otp does not match")
	ErrOTPTooManyAttempts = errors.New("too many otp attempts")
)

// OTPStore keeps one-time passcodes in Redis with a TTL, keyed by email.
// Both the mail relay and the API server use it.
type OTPStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewOTPStore(rdb redis.Cmdable, ttl time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: ttl}
}

func (s *OTPStore) TTL() time.Duration {
	return s.ttl
}

// Issue creates a fresh passcode for email, replacing any earlier one.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := randomString(otpDigits, otpLength)
	if err != nil {
		return "", err
	}
	email = normalize(email)
	if _, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, otpKeyPrefix+email, code, s.ttl)
		pipe.Del(ctx, otpAttemptsPrefix+email)
		return nil
	}); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the stored passcode and deletes it on success.
// After maxOTPAttempts wrong guesses the passcode is discarded.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	email = normalize(email)
	stored, err := s.rdb.Get(ctx, otpKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) == 1 {
		deleted, err := s.rdb.Del(ctx, otpKeyPrefix+email, otpAttemptsPrefix+email).Result()
		if err != nil {
			return fmt.Errorf("delete otp: %w", err)
		}
		if deleted == 0 {
			// consumed concurrently
			return ErrOTPNotFound
		}
		return nil
	}

	attempts, err := s.rdb.Incr(ctx, otpAttemptsPrefix+email).Result()
	if err != nil {
		return fmt.Errorf("count otp attempts: %w", err)
	}
	if attempts == 1 {
		if err := s.rdb.Expire(ctx, otpAttemptsPrefix+email, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire otp attempts: %w", err)
		}
	}
	if attempts >= maxOTPAttempts {
		if err := s.rdb.Del(ctx, otpKeyPrefix+email, otpAttemptsPrefix+email).Err(); err != nil {
			return fmt.Errorf("discard otp: %w", err)
		}
		return ErrOTPTooManyAttempts
	}
	return ErrOTPMismatch
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
