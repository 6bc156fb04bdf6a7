package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"door-alarm-backend/internal/model"
)

// GetEvents handles the GET /api/events request with page/per_page
// pagination, newest first.
func (h *Handler) GetEvents(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 || perPage > 100 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid per_page"})
		return
	}

	result, err := h.store.ListEvents(c.Request.Context(), page, perPage)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type testEventRequest struct {
	EventType   string `json:"event_type" binding:"required"`
	Description string `json:"description"`
}

// PostTestEvent handles POST /api/test-event: feeds a synthetic event through
// the same gate the sensor uses, so dedup and broadcast behave identically.
func (h *Handler) PostTestEvent(c *gin.Context) {
	var req testEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType := model.EventType(req.EventType)
	if !model.ValidEventType(eventType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type"})
		return
	}
	description := req.Description
	if description == "" {
		description = "Test event"
	}

	outcome, err := h.pipeline.Submit(c.Request.Context(), eventType, description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": outcome.String()})
}
