package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionLifecycle(t *testing.T) {
	router, _ := setupRouter(t)

	body := gin.H{
		"endpoint": "https://push.example.com/abc",
		"p256dh":   "key",
		"auth":     "auth",
	}
	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	// Replacing the same endpoint is idempotent.
	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "https://push.example.com/abc"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutSubscriptionRejectsMissingFields(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": "https://push.example.com/abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKeyUnconfigured(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
