package api

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/store"
)

func seedReportEvents(t *testing.T, appStore store.Store) {
	t.Helper()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, et := range []model.EventType{
		model.EventDoorOpen,
		model.EventDoorClose,
		model.EventDoorOpen,
		model.EventAlarmTriggered,
		model.EventDoorClose,
	} {
		event := model.Event{
			EventType:   et,
			Description: string(et),
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, appStore.AppendEvent(t.Context(), &event))
	}
}

func TestGetReportCSV(t *testing.T) {
	router, appStore := setupRouter(t)
	seedReportEvents(t, appStore)

	w := doJSON(t, router, http.MethodGet, "/api/report/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6) // header + 5 events
	assert.Equal(t, []string{"id", "event_type", "description", "timestamp"}, records[0])
	assert.Equal(t, "door_open", records[1][1])
}

func TestGetReportCSVTypeFilter(t *testing.T) {
	router, appStore := setupRouter(t)
	seedReportEvents(t, appStore)

	w := doJSON(t, router, http.MethodGet, "/api/report/csv?types=alarm_triggered", nil)
	require.Equal(t, http.StatusOK, w.Code)

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alarm_triggered", records[1][1])
}

func TestGetReportCSVDateRange(t *testing.T) {
	router, appStore := setupRouter(t)
	seedReportEvents(t, appStore)

	w := doJSON(t, router, http.MethodGet,
		"/api/report/csv?start=2025-06-01T09:00:00Z&end=2025-06-01T11:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	// Events at 09:00 and 10:00; the end bound is exclusive.
	require.Len(t, records, 3)
}

func TestGetReportCSVRejectsBadQuery(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/report/csv?start=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/report/csv?types=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet,
		"/api/report/csv?start=2025-06-02&end=2025-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
