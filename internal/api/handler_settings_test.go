package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"door-alarm-backend/internal/model"
)

func TestGetTimerSettingDefault(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/settings/timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"timer_duration":30}`, w.Body.String())
}

func TestPutTimerSetting(t *testing.T) {
	router, appStore := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/settings/timer", gin.H{"timer_duration": 45})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/settings/timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"timer_duration":45}`, w.Body.String())

	// The change shows up in the event log.
	last, err := appStore.LastEvent(t.Context())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, model.EventSettingChanged, last.EventType)
	assert.Contains(t, last.Description, "45 seconds")
}

func TestPutTimerSettingRejectsNonPositive(t *testing.T) {
	router, _ := setupRouter(t)

	for _, value := range []int{0, -5} {
		w := doJSON(t, router, http.MethodPut, "/api/settings/timer", gin.H{"timer_duration": value})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestMailConfigRoundTrip(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/mail-config", gin.H{
		"sender_email":     "alarm@example.com",
		"app_password":     "secret",
		"recipient_emails": "ops@example.com, admin@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/mail-config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alarm@example.com")
	assert.Contains(t, w.Body.String(), `"is_configured":true`)
	// The app password is write-only.
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestPutMailConfigRejectsBadRecipients(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/mail-config", gin.H{
		"sender_email":     "alarm@example.com",
		"app_password":     "secret",
		"recipient_emails": "not-an-address",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
