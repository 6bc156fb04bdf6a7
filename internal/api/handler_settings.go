package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"door-alarm-backend/internal/model"
)

// GetTimerSetting handles GET /api/settings/timer.
func (h *Handler) GetTimerSetting(c *gin.Context) {
	duration, err := h.store.TimerDuration(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to read setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer_duration": int(duration.Seconds())})
}

type putTimerRequest struct {
	TimerDuration int `json:"timer_duration" binding:"required"`
}

// PutTimerSetting handles PUT /api/settings/timer. A change takes effect on
// the next door-open edge; a running countdown keeps its snapshotted value.
func (h *Handler) PutTimerSetting(c *gin.Context) {
	var req putTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TimerDuration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timer_duration must be a positive number of seconds"})
		return
	}

	ctx := c.Request.Context()
	err := h.store.PutSetting(ctx, model.SettingTimerDuration, strconv.Itoa(req.TimerDuration))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}

	description := fmt.Sprintf("Timer duration set to %d seconds", req.TimerDuration)
	if _, err := h.pipeline.Submit(ctx, model.EventSettingChanged, description); err != nil {
		log.Printf("api: record setting_changed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"timer_duration": req.TimerDuration})
}
