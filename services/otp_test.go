package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPStore_IssueAndVerify(t *testing.T) {
	_, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, 10*time.Minute)
	ctx := context.Background()

	code, err := otp.Issue(ctx, "Asha@Example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	require.NoError(t, otp.Verify(ctx, "asha@example.com", code))
	assert.ErrorIs(t, otp.Verify(ctx, "asha@example.com", code), ErrOTPNotFound)
}

func TestOTPStore_ReissueReplacesCode(t *testing.T) {
	_, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, 10*time.Minute)
	ctx := context.Background()

	first, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	second, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, otp.Verify(ctx, "a@example.com", first), ErrOTPMismatch)
	}
	assert.NoError(t, otp.Verify(ctx, "a@example.com", second))
}

func TestOTPStore_Expires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, time.Minute)
	ctx := context.Background()

	code, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, otp.Verify(ctx, "a@example.com", code), ErrOTPNotFound)
}

func TestOTPStore_AttemptLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, 10*time.Minute)
	ctx := context.Background()

	code, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < maxOTPAttempts; i++ {
		assert.ErrorIs(t, otp.Verify(ctx, "a@example.com", wrong), ErrOTPMismatch)
	}
	assert.ErrorIs(t, otp.Verify(ctx, "a@example.com", wrong), ErrOTPTooManyAttempts)
	assert.ErrorIs(t, otp.Verify(ctx, "a@example.com", code), ErrOTPNotFound)
}

func TestOTPStore_AttemptCounterExpiryFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, 10*time.Minute)
	ctx := context.Background()

	code, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rdb.AddHook(failCommand("expire"))

	err = otp.Verify(ctx, "a@example.com", wrong)
	require.ErrorIs(t, err, errCommandRefused)
	assert.NotErrorIs(t, err, ErrOTPMismatch)
	assert.ErrorContains(t, err, "expire otp attempts")
	assert.Equal(t, time.Duration(0), mr.TTL(otpAttemptsPrefix+"a@example.com"))
}

func TestOTPStore_DiscardFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	otp := NewOTPStore(rdb, 10*time.Minute)
	ctx := context.Background()

	code, err := otp.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 1; i < maxOTPAttempts; i++ {
		require.ErrorIs(t, otp.Verify(ctx, "a@example.com", wrong), ErrOTPMismatch)
	}
	rdb.AddHook(failCommand("del"))

	err = otp.Verify(ctx, "a@example.com", wrong)
	require.ErrorIs(t, err, errCommandRefused)
	assert.NotErrorIs(t, err, ErrOTPTooManyAttempts)
	assert.ErrorContains(t, err, "discard otp")
	assert.True(t, mr.Exists(otpKeyPrefix+"a@example.com"))
}
