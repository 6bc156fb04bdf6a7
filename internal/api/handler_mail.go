package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/parse"
)

// GetMailConfig handles GET /api/mail-config. The app password never leaves
// the server; the JSON shape omits it.
func (h *Handler) GetMailConfig(c *gin.Context) {
	cfg, err := h.store.GetMailConfig(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to read mail config"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusOK, &model.MailConfig{})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type putMailConfigRequest struct {
	SenderEmail     string `json:"sender_email" binding:"required"`
	AppPassword     string `json:"app_password" binding:"required"`
	RecipientEmails string `json:"recipient_emails" binding:"required"`
}

// PutMailConfig handles PUT /api/mail-config.
func (h *Handler) PutMailConfig(c *gin.Context) {
	var req putMailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(parse.Recipients(req.RecipientEmails)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient_emails contains no valid addresses"})
		return
	}

	ctx := c.Request.Context()
	cfg := &model.MailConfig{
		SenderEmail:     req.SenderEmail,
		AppPassword:     req.AppPassword,
		RecipientEmails: req.RecipientEmails,
		IsConfigured:    true,
	}
	if err := h.store.SaveMailConfig(ctx, cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save mail config"})
		return
	}

	if _, err := h.pipeline.Submit(ctx, model.EventSettingChanged, "Mail configuration updated"); err != nil {
		log.Printf("api: record setting_changed: %v", err)
	}

	c.JSON(http.StatusOK, cfg)
}
