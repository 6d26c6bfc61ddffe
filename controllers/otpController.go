package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/metrics"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"
	"github.com/utsavrajji/FixMyArea-sub000/services"

	"github.com/gin-gonic/gin"
)

// OTPIssuer creates and checks passcodes.
type OTPIssuer interface {
	OTPVerifier
	Issue(ctx context.Context, email string) (string, error)
	TTL() time.Duration
}

// OTPController serves the mail relay process.
type OTPController struct {
	otp     OTPIssuer
	mailer  services.Mailer
	limiter middlewares.Limiter
}

func NewOTPController(otp OTPIssuer, mailer services.Mailer, limiter middlewares.Limiter) *OTPController {
	return &OTPController{otp: otp, mailer: mailer, limiter: limiter}
}

// SendOTP mails a fresh passcode to the address, replacing any earlier one.
func (h *OTPController) SendOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	allowed, retryAfter, err := h.limiter.Allow(ctx, strings.ToLower(input.Email))
	if err != nil {
		slog.Error("OTP rate limiter failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if !allowed {
		metrics.OTPMessages.WithLabelValues("throttled").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many codes requested, try again later",
			"retry_after": retryAfter.Seconds(),
		})
		return
	}

	code, err := h.otp.Issue(ctx, input.Email)
	if err != nil {
		slog.Error("Failed to store OTP", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	body, err := services.RenderOTPEmail(code, h.otp.TTL())
	if err == nil {
		err = h.mailer.Send(ctx, input.Email, "Your FixMyArea verification code", body)
	}
	metrics.OTPMessages.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("Failed to send OTP email", "to", input.Email, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP consumes the passcode when it matches.
func (h *OTPController) VerifyOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and OTP are required"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.otp.Verify(ctx, input.Email, input.OTP)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
	case errors.Is(err, services.ErrOTPNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired or not found"})
	case errors.Is(err, services.ErrOTPMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
	case errors.Is(err, services.ErrOTPTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, request a new code"})
	default:
		slog.Error("OTP verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
