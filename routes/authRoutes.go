package routes

import (
	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r gin.IRouter, auth *controllers.AuthController, jwtSecret string) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", auth.RegisterUser)
		group.POST("/login", auth.LoginUser)
		group.POST("/logout", auth.LogoutUser)
		group.POST("/password/reset", auth.ResetPassword)
		group.GET("/me", middlewares.AuthMiddleware(jwtSecret), auth.GetMe)
	}
	r.GET("/api/captcha", auth.GetCaptcha)
}
