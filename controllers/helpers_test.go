package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/middlewares"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"
	"github.com/utsavrajji/FixMyArea-sub000/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "test-secret"
	testAdminPassword = "let-me-in"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type testEnv struct {
	router   *gin.Engine
	issues   *store.MemoryIssueStore
	users    *store.MemoryUserStore
	contacts *store.MemoryContactStore
	notifier *services.LocalNotifier
	captcha  *services.CaptchaService
	otp      *services.OTPStore
	images   *fakeImageStore
	mr       *miniredis.Miniredis
}

type envConfig struct {
	auth       AuthSettings
	issueLimit int
}

type envOption func(*envConfig)

func withCaptcha(c *envConfig) { c.auth.CaptchaRequired = true }

func withIssueLimit(n int) envOption {
	return func(c *envConfig) { c.issueLimit = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		issues:   store.NewMemoryIssueStore(),
		users:    store.NewMemoryUserStore(),
		contacts: store.NewMemoryContactStore(),
		notifier: services.NewLocalNotifier(),
		captcha:  services.NewCaptchaService(rdb, time.Minute),
		otp:      services.NewOTPStore(rdb, 10*time.Minute),
		images:   &fakeImageStore{},
		mr:       mr,
	}

	cfg := envConfig{
		auth:       AuthSettings{JWTSecret: testSecret, TokenTTL: time.Hour},
		issueLimit: 100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	directory := services.NewUserDirectory(env.users, 16, time.Minute)
	authCtl := NewAuthController(env.users, directory, env.captcha, env.otp, cfg.auth)
	issueCtl := NewIssueController(env.issues, directory, env.notifier, nil)
	adminCtl := NewAdminController(env.issues, env.users, env.notifier, testSecret, testAdminPassword, time.Hour)
	contactCtl := NewContactController(env.contacts)
	uploadCtl := NewUploadController(env.images)

	auth := middlewares.AuthMiddleware(testSecret)
	admin := middlewares.RequireAdmin()
	limiter := services.NewFixedWindowLimiter(rdb, "issue-limit", cfg.issueLimit, 24*time.Hour)

	r := gin.New()
	r.GET("/api/captcha", authCtl.GetCaptcha)
	r.POST("/api/auth/register", authCtl.RegisterUser)
	r.POST("/api/auth/login", authCtl.LoginUser)
	r.POST("/api/auth/logout", authCtl.LogoutUser)
	r.POST("/api/auth/password/reset", authCtl.ResetPassword)
	r.GET("/api/auth/me", auth, authCtl.GetMe)

	r.GET("/api/issues", issueCtl.GetAllIssues)
	r.GET("/api/issues/live", issueCtl.LiveIssues)
	r.GET("/api/issues/recent", issueCtl.RecentIssues)
	r.GET("/api/issues/options", GetIssueOptions)
	r.GET("/api/issues/mine", auth, issueCtl.GetMyIssues)
	r.POST("/api/issues", auth, middlewares.IssueRateLimiter(limiter), issueCtl.CreateIssue)
	r.GET("/api/issues/:id", issueCtl.GetIssue)
	r.POST("/api/issues/:id/like", auth, issueCtl.ToggleLike)
	r.POST("/api/issues/:id/comments", auth, issueCtl.AddComment)
	r.POST("/api/issues/:id/retweet", auth, issueCtl.Retweet)

	r.POST("/api/admin/login", adminCtl.Login)
	r.PATCH("/api/admin/issues/:id/status", auth, admin, adminCtl.UpdateIssueStatus)
	r.DELETE("/api/admin/issues/:id", auth, admin, adminCtl.DeleteIssue)
	r.GET("/api/admin/analytics", auth, admin, adminCtl.GetIssueAnalytics)
	r.GET("/api/admin/users", auth, admin, adminCtl.ListUsers)
	r.GET("/api/admin/contact", auth, admin, contactCtl.List)
	r.PATCH("/api/admin/contact/:id/status", auth, admin, contactCtl.UpdateStatus)

	r.POST("/api/contact", contactCtl.Submit)
	r.POST("/api/uploads", auth, uploadCtl.Upload)

	env.router = r
	return env
}

// addUser stores a citizen and returns a session token for them.
func (e *testEnv) addUser(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "secret123", Role: models.RoleCitizen, CreatedAt: time.Now()}
	require.NoError(t, user.HashPassword())
	require.NoError(t, e.users.Create(t.Context(), user))
	token, err := utils.GenerateToken(testSecret, user.ID.Hex(), string(user.Role), time.Hour)
	require.NoError(t, err)
	return user, token
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, utils.AdminSubject, string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func validIssuePayload() gin.H {
	return gin.H{
		"category":    "Water Supply",
		"subIssue":    "No water supply",
		"description": "Taps dry for a week",
		"location": gin.H{
			"state":     "Jharkhand",
			"district":  "Ranchi",
			"block":     "Kanke",
			"village":   "Pithoria",
			"panchayat": "Pithoria",
			"pinCode":   "834001",
			"mobile":    "9876543210",
		},
		"photoURL":      "https://cdn.example.com/p.jpg",
		"photoPublicId": "issues/p",
	}
}

func (e *testEnv) createIssue(t *testing.T, token string) models.Issue {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/issues", token, validIssuePayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Issue](t, w)
}
