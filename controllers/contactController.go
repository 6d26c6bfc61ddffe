package controllers

import (
	"net/http"
	"time"

	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/services"
	"github.com/utsavrajji/FixMyArea-sub000/store"

	"github.com/gin-gonic/gin"
)

type ContactController struct {
	messages store.ContactStore
}

func NewContactController(messages store.ContactStore) *ContactController {
	return &ContactController{messages: messages}
}

// Submit stores a message from the public contact form.
func (h *ContactController) Submit(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required,max=100"`
		Email   string `json:"email" binding:"required,email"`
		Phone   string `json:"phone" binding:"omitempty,numeric,len=10"`
		Subject string `json:"subject" binding:"required,max=200"`
		Message string `json:"message" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	msg := models.ContactMessage{
		Name:      services.CleanText(input.Name),
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   services.CleanText(input.Subject),
		Message:   services.CleanText(input.Message),
		Status:    models.ContactNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if msg.Name == "" || msg.Subject == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, subject and message are required"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.messages.Create(ctx, &msg); err != nil {
		respondStoreError(c, err, "message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ContactController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	messages, err := h.messages.List(ctx)
	if err != nil {
		respondStoreError(c, err, "message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "totalMessages": len(messages)})
}

func (h *ContactController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status models.ContactStatus `json:"status" binding:"required,contactstatus"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.messages.UpdateStatus(ctx, c.Param("id"), input.Status)
	if err != nil {
		respondStoreError(c, err, "message")
		return
	}
	c.JSON(http.StatusOK, msg)
}
