package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/middlewares"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middlewares.UserIDKey)
}

// respondStoreError maps store errors onto HTTP responses. Unexpected
// errors are logged and reported without detail.
func respondStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(what) + " not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Please retry, the " + what + " changed concurrently"})
	default:
		slog.Error("Store operation failed", "what", what, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// publish announces a change to live subscribers. A failed publish only
// delays live views until the next change, so it is logged and ignored.
func publish(ctx context.Context, n services.Notifier, eventType, issueID string) {
	if err := n.Publish(ctx, services.IssueEvent{Type: eventType, IssueID: issueID}); err != nil {
		slog.Warn("Failed to publish issue event", "type", eventType, "issue_id", issueID, "error", err)
	}
}

var registerOnce sync.Once

// RegisterValidators adds the enum tags used in request bindings to gin's
// validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("issuestatus", func(fl validator.FieldLevel) bool {
			return models.IssueStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("contactstatus", func(fl validator.FieldLevel) bool {
			return models.ContactStatus(fl.Field().String()).Valid()
		})
	})
}
