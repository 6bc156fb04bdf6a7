package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"door-alarm-backend/internal/model"
)

func createTestUser(t *testing.T, router *gin.Engine, username string, permissions []string) model.User {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username":    username,
		"password":    "hunter2",
		"permissions": permissions,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func TestLogin(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/login", gin.H{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, w.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.Permissions.Has(model.PermissionAdmin))
	// The password hash never appears in responses.
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", gin.H{"username": "ghost", "password": "admin"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUser(t *testing.T) {
	router, _ := setupRouter(t)

	user := createTestUser(t, router, "alice", []string{"dashboard", "event_log"})
	assert.True(t, user.Permissions.Has(model.PermissionDashboard))
	assert.True(t, user.Permissions.Has(model.PermissionEventLog))
	assert.False(t, user.IsAdmin)

	// Duplicate usernames are rejected.
	w := doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown permissions are rejected.
	w = doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username":    "bob",
		"password":    "x",
		"permissions": []string{"superuser"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUserRecordsEvent(t *testing.T) {
	router, appStore := setupRouter(t)

	createTestUser(t, router, "alice", nil)

	last, err := appStore.LastEvent(t.Context())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, model.EventUserCreated, last.EventType)
	assert.Contains(t, last.Description, "alice")
}

func TestUpdateUserPermissions(t *testing.T) {
	router, _ := setupRouter(t)
	user := createTestUser(t, router, "alice", []string{"dashboard"})

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), gin.H{
		"permissions": []string{"dashboard", "report"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Permissions.Has(model.PermissionReport))
}

func TestUpdateAdminKeepsAdminPermission(t *testing.T) {
	router, appStore := setupRouter(t)

	admin, err := appStore.GetUserByUsername(t.Context(), "admin")
	require.NoError(t, err)

	// Stripping the admin permission from the admin account is silently
	// reverted.
	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/users/%d", admin.ID), gin.H{
		"permissions": []string{"dashboard"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Permissions.Has(model.PermissionAdmin))
}

func TestDeleteUser(t *testing.T) {
	router, _ := setupRouter(t)
	user := createTestUser(t, router, "alice", nil)

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAdminForbidden(t *testing.T) {
	router, appStore := setupRouter(t)

	admin, err := appStore.GetUserByUsername(t.Context(), "admin")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUsersListsSeededAdmin(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}
