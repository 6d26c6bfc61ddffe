package controllers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/metrics"
	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"
	"github.com/utsavrajji/FixMyArea-sub000/utils"

	"github.com/gin-gonic/gin"
)

// AdminController serves the /api/admin endpoints. Everything except Login
// sits behind AuthMiddleware and RequireAdmin.
type AdminController struct {
	issues        store.IssueStore
	users         store.UserStore
	notifier      services.Notifier
	jwtSecret     string
	adminPassword string
	tokenTTL      time.Duration
}

func NewAdminController(issues store.IssueStore, users store.UserStore, notifier services.Notifier, jwtSecret, adminPassword string, tokenTTL time.Duration) *AdminController {
	return &AdminController{
		issues:        issues,
		users:         users,
		notifier:      notifier,
		jwtSecret:     jwtSecret,
		adminPassword: adminPassword,
		tokenTTL:      tokenTTL,
	}
}

// Login exchanges the shared admin password for a short lived admin token.
func (h *AdminController) Login(c *gin.Context) {
	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.adminPassword == "" || subtle.ConstantTimeCompare([]byte(input.Password), []byte(h.adminPassword)) != 1 {
		slog.Warn("Rejected admin login", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin password"})
		return
	}

	expiresAt := time.Now().Add(h.tokenTTL)
	token, err := utils.GenerateToken(h.jwtSecret, utils.AdminSubject, string(models.RoleAdmin), h.tokenTTL)
	if err != nil {
		slog.Error("Error generating admin token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt})
}

// UpdateIssueStatus moves an issue to any status of the enumeration.
func (h *AdminController) UpdateIssueStatus(c *gin.Context) {
	var input struct {
		Status models.IssueStatus `json:"status" binding:"required,issuestatus"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	issue, err := h.issues.UpdateStatus(ctx, id, input.Status)
	metrics.IssueOperations.WithLabelValues("update_status", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventUpdated, id)

	c.JSON(http.StatusOK, issue)
}

// DeleteIssue removes an issue. The photo stays in the bucket.
func (h *AdminController) DeleteIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	err := h.issues.Delete(ctx, id)
	metrics.IssueOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	publish(ctx, h.notifier, services.EventDeleted, id)

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// GetIssueAnalytics returns the dashboard aggregates.
func (h *AdminController) GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	analytics, err := h.issues.Analytics(ctx, time.Now())
	if err != nil {
		respondStoreError(c, err, "issue")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *AdminController) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "totalUsers": len(users)})
}
