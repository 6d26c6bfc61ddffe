package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// captchaAlphabet leaves out characters that are easy to misread (0/O, 1/I/l).
const captchaAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const captchaKeyPrefix = "captcha:"

// CaptchaService issues random string challenges and checks answers. Each
// challenge can be answered once.
type CaptchaService struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	length int
}

func NewCaptchaService(rdb redis.Cmdable, ttl time.Duration) *CaptchaService {
	return &CaptchaService{rdb: rdb, ttl: ttl, length: 6}
}

// Generate stores a new challenge and returns its id and text.
func (s *CaptchaService) Generate(ctx context.Context) (string, string, error) {
	challenge, err := randomString(captchaAlphabet, s.length)
	if err != nil {
		return "", "", err
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, captchaKeyPrefix+id, challenge, s.ttl).Err(); err != nil {
		return "", "", fmt.Errorf("store captcha: %w", err)
	}
	return id, challenge, nil
}

// Verify consumes the challenge and reports whether answer matches it,
// ignoring case and surrounding space.
func (s *CaptchaService) Verify(ctx context.Context, id, answer string) (bool, error) {
	if id == "" {
		return false, nil
	}
	challenge, err := s.rdb.GetDel(ctx, captchaKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load captcha: %w", err)
	}
	return strings.EqualFold(challenge, strings.TrimSpace(answer)), nil
}

func randomString(alphabet string, n int) (string, error) {
	var b strings.Builder
	size := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
