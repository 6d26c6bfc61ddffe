package routes

import (
	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the administrator routes. Login is throttled per
// client; every other route needs a token carrying the admin role.
func AdminRoutes(r gin.IRouter, admin *controllers.AdminController, contact *controllers.ContactController, jwtSecret string, loginLimiter middlewares.Limiter) {
	r.POST("/api/admin/login", middlewares.ClientRateLimiter(loginLimiter), admin.Login)

	group := r.Group("/api/admin", middlewares.AuthMiddleware(jwtSecret), middlewares.RequireAdmin())
	{
		group.PATCH("/issues/:id/status", admin.UpdateIssueStatus)
		group.DELETE("/issues/:id", admin.DeleteIssue)
		group.GET("/analytics", admin.GetIssueAnalytics)
		group.GET("/users", admin.ListUsers)
		group.GET("/contact", contact.List)
		group.PATCH("/contact/:id/status", contact.UpdateStatus)
	}
}
