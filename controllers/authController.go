package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/middlewares"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"
	"github.com/utsavrajji/FixMyArea-sub000/utils"

	"github.com/gin-gonic/gin"
)

// Captcha issues and checks one-shot challenges.
type Captcha interface {
	Generate(ctx context.Context) (string, string, error)
	Verify(ctx context.Context, id, answer string) (bool, error)
}

// OTPVerifier consumes a passcode sent to an email address.
type OTPVerifier interface {
	Verify(ctx context.Context, email, code string) error
}

// AuthSettings are the token and cookie parameters of the auth handlers.
type AuthSettings struct {
	JWTSecret       string
	TokenTTL        time.Duration
	Domain          string
	Production      bool
	CaptchaRequired bool
}

type AuthController struct {
	users     store.UserStore
	directory *services.UserDirectory
	captcha   Captcha
	otp       OTPVerifier
	settings  AuthSettings
}

func NewAuthController(users store.UserStore, directory *services.UserDirectory, captcha Captcha, otp OTPVerifier, settings AuthSettings) *AuthController {
	return &AuthController{users: users, directory: directory, captcha: captcha, otp: otp, settings: settings}
}

type captchaAnswer struct {
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

// checkCaptcha writes the error response and returns false when the
// captcha is required and not solved.
func (h *AuthController) checkCaptcha(c *gin.Context, ctx context.Context, answer captchaAnswer) bool {
	if !h.settings.CaptchaRequired {
		return true
	}
	ok, err := h.captcha.Verify(ctx, answer.CaptchaID, answer.CaptchaAnswer)
	if err != nil {
		slog.Error("Captcha verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return false
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Captcha does not match, please try again"})
		return false
	}
	return true
}

// GetCaptcha issues a new challenge for the login and registration forms.
func (h *AuthController) GetCaptcha(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id, challenge, err := h.captcha.Generate(ctx)
	if err != nil {
		slog.Error("Error generating captcha", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"captchaId": id, "challenge": challenge})
}

// RegisterUser handles user registration
func (h *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"omitempty,numeric,len=10"`
		Password string `json:"password" binding:"required,min=6"`
		captchaAnswer
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !h.checkCaptcha(c, ctx, input.captchaAnswer) {
		return
	}

	name := services.CleanText(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	now := time.Now()
	user := models.User{
		Name:      name,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  input.Password,
		Role:      models.RoleCitizen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.HashPassword(); err != nil {
		slog.Error("Error hashing password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if err := h.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		slog.Error("Error inserting user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// LoginUser handles user login
func (h *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		captchaAnswer
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !h.checkCaptcha(c, ctx, input.captchaAnswer) {
		return
	}

	user, err := h.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Error loading user", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(h.settings.JWTSecret, user.ID.Hex(), string(user.Role), h.settings.TokenTTL)
	if err != nil {
		slog.Error("Error generating token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	h.setAuthCookie(c, token, int(h.settings.TokenTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
		"token":     token,
	})
}

func (h *AuthController) setAuthCookie(c *gin.Context, value string, maxAge int) {
	domain := h.settings.Domain
	sameSite := http.SameSiteLaxMode
	// the production frontend is on another origin: browsers only send the
	// cookie cross-site when it is Secure and SameSite=None
	if h.settings.Production {
		domain = ""
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   domain,
		Secure:   h.settings.Production,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

// GetMe retrieves the authenticated user's information
func (h *AuthController) GetMe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.directory.Lookup(ctx, currentUserID(c))
	if err != nil {
		if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respondStoreError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"phone":     user.Phone,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

// LogoutUser handles user logout by clearing the auth_token cookie
func (h *AuthController) LogoutUser(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// ResetPassword sets a new password once the caller proves control of the
// account's email with a passcode from the OTP relay.
func (h *AuthController) ResetPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required,numeric,len=6"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.otp.Verify(ctx, input.Email, input.OTP); err != nil {
		if errors.Is(err, services.ErrOTPNotFound) || errors.Is(err, services.ErrOTPMismatch) || errors.Is(err, services.ErrOTPTooManyAttempts) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code"})
			return
		}
		slog.Error("OTP verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	user, err := h.users.GetByEmail(ctx, input.Email)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}

	user.Password = input.NewPassword
	if err := user.HashPassword(); err != nil {
		slog.Error("Error hashing password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID.Hex(), user.Password); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	h.directory.Forget(user.ID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
