package routes

import (
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the handlers and settings the API router is built from.
type Deps struct {
	JWTSecret   string
	CORSOrigins []string

	Auth    *controllers.AuthController
	Issues  *controllers.IssueController
	Admin   *controllers.AdminController
	Contact *controllers.ContactController
	Uploads *controllers.UploadController

	IssueLimiter      middlewares.Limiter
	AdminLoginLimiter middlewares.Limiter
}

func newEngine(origins []string) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middlewares.Metrics())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials cannot be combined with a literal "*"
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsConfig.AllowOrigins = origins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// SetupRouter builds the API server's engine.
func SetupRouter(d Deps) *gin.Engine {
	r := newEngine(d.CORSOrigins)

	AuthRoutes(r, d.Auth, d.JWTSecret)
	IssueRoutes(r, d.Issues, d.JWTSecret, d.IssueLimiter)
	AdminRoutes(r, d.Admin, d.Contact, d.JWTSecret, d.AdminLoginLimiter)
	ContactRoutes(r, d.Contact, d.Uploads, d.JWTSecret)
	return r
}

// SetupRelayRouter builds the OTP mail relay's engine.
func SetupRelayRouter(otp *controllers.OTPController, origins []string) *gin.Engine {
	r := newEngine(origins)
	r.POST("/send-otp", otp.SendOTP)
	r.POST("/verify-otp", otp.VerifyOTP)
	return r
}
