package routes

import (
	"github.com/utsavrajji/FixMyArea-sub000/controllers"
	"github.com/utsavrajji/FixMyArea-sub000/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r gin.IRouter, issues *controllers.IssueController, jwtSecret string, createLimiter middlewares.Limiter) {
	auth := middlewares.AuthMiddleware(jwtSecret)

	issue := r.Group("/api/issues")
	{
		issue.GET("", issues.GetAllIssues)
		issue.GET("/live", issues.LiveIssues)
		issue.GET("/recent", issues.RecentIssues)
		issue.GET("/options", controllers.GetIssueOptions)
		issue.GET("/mine", auth, issues.GetMyIssues)
		issue.POST("", auth, middlewares.IssueRateLimiter(createLimiter), issues.CreateIssue)
		issue.GET("/:id", issues.GetIssue)
		issue.POST("/:id/like", auth, issues.ToggleLike)
		issue.POST("/:id/comments", auth, issues.AddComment)
		issue.POST("/:id/retweet", auth, issues.Retweet)
	}
}

// ContactRoutes sets up the public contact form and image upload routes.
func ContactRoutes(r gin.IRouter, contact *controllers.ContactController, uploads *controllers.UploadController, jwtSecret string) {
	r.POST("/api/contact", contact.Submit)
	r.POST("/api/uploads", middlewares.AuthMiddleware(jwtSecret), uploads.Upload)
}
