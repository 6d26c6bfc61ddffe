package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether another hit for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

const issueQuotaKey = "issue_quota"

// IssueRateLimiter attaches the per-user issue creation quota to the request.
// Nothing is counted here: the handler spends the quota with ConsumeQuota once
// the submission has passed validation, so rejected submissions are free. It
// must run after AuthMiddleware.
func IssueRateLimiter(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		c.Set(issueQuotaKey, func() bool {
			return allow(c, limiter, userID, "user_id")
		})
		c.Next()
	}
}

// ConsumeQuota spends one unit of the quota attached by IssueRateLimiter.
// When it returns false the 429 or 500 response has already been written.
// Requests without an attached quota are always allowed.
func ConsumeQuota(c *gin.Context) bool {
	v, ok := c.Get(issueQuotaKey)
	if !ok {
		return true
	}
	consume, ok := v.(func() bool)
	if !ok {
		return true
	}
	return consume()
}

// ClientRateLimiter limits requests per client IP, for unauthenticated
// endpoints such as the admin login.
func ClientRateLimiter(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c, limiter, c.ClientIP(), "client_ip") {
			return
		}
		c.Next()
	}
}

func allow(c *gin.Context, limiter Limiter, key, logField string) bool {
	allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
	if err != nil {
		slog.Error("Rate limiter failed", logField, key, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return false
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retryAfter.Seconds(),
		})
		return false
	}
	return true
}
