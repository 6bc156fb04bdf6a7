package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/store"
)

// GetReportCSV handles GET /api/report/csv. Optional query parameters:
// start and end (RFC 3339 or YYYY-MM-DD) and types (comma separated).
func (h *Handler) GetReportCSV(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.store.EventsForReport(c.Request.Context(), filter)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	filename := fmt.Sprintf("event-report-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "event_type", "description", "timestamp"})
	for _, event := range events {
		w.Write([]string{
			strconv.FormatInt(event.ID, 10),
			string(event.EventType),
			event.Description,
			event.Timestamp.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func reportFilterFromQuery(c *gin.Context) (store.EventFilter, error) {
	var filter store.EventFilter

	if raw := c.Query("start"); raw != "" {
		t, err := parseReportTime(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid start: %w", err)
		}
		filter.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseReportTime(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end: %w", err)
		}
		filter.End = &t
	}
	if filter.Start != nil && filter.End != nil && !filter.End.After(*filter.Start) {
		return filter, fmt.Errorf("end must be after start")
	}

	if raw := c.Query("types"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			t := model.EventType(strings.TrimSpace(name))
			if !model.ValidEventType(t) {
				return filter, fmt.Errorf("unknown event type %q", name)
			}
			filter.Types = append(filter.Types, t)
		}
	}

	return filter, nil
}

func parseReportTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
