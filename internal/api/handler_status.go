package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus handles the GET /api/status request: the dashboard's one-shot
// view of door state, alarm state, timer setting, last event, and counters.
func (h *Handler) GetStatus(c *gin.Context) {
	payload, err := h.pipeline.CurrentStatus(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve status"})
		return
	}
	c.JSON(http.StatusOK, payload)
}

// GetStatistics handles the GET /api/statistics request.
func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.store.EventStatistics(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
