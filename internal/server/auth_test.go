package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Health(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/health", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func Test_UnknownRoute_ReturnsErrorJSON(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/no-such-route", "", nil)
	requireStatus(t, resp, http.StatusNotFound, body)
	assert.NotEmpty(t, mustDecodeError(t, body).Error)
}

func Test_Auth_Register_Login_Profile(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	token, user := registerUser(t, c, ctx, "alice")
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	//同じメールは409
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", mustJSON(t, map[string]string{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "password123",
	}))
	requireStatus(t, resp, http.StatusConflict, body)

	//パスワード違いは401
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", mustJSON(t, map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}))
	requireStatus(t, resp, http.StatusUnauthorized, body)
	assert.Equal(t, "invalid credentials", mustDecodeError(t, body).Error)

	//トークンなしは401
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/auth/profile", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	loginToken := login(t, c, ctx, "alice@example.com", "password123")
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/auth/profile", loginToken, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var profile struct {
		User UserDTO `json:"user"`
	}
	mustDecode(t, body, &profile)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, "alice", profile.User.Username)
}

func Test_Auth_RejectsUnknownFields(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", mustJSON(t, map[string]interface{}{
		"username": "mallory",
		"email":    "mallory@example.com",
		"password": "password123",
		"is_admin": true,
	}))
	requireStatus(t, resp, http.StatusBadRequest, body)
	assert.Equal(t, "invalid body", mustDecodeError(t, body).Error)
}

func Test_AdminRoutes_RequireAdmin(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()
	userToken, _ := registerUser(t, c, ctx, "bob")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/products/admin", userToken, mustJSON(t, map[string]interface{}{
		"name":  "Nope",
		"price": "1.00",
	}))
	requireStatus(t, resp, http.StatusForbidden, body)
	assert.Equal(t, "admin only", mustDecodeError(t, body).Error)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/admin/all", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/admin/audit-logs", userToken, nil)
	requireStatus(t, resp, http.StatusForbidden, body)

	admin := adminLogin(t, c, ctx)
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/admin/audit-logs", admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	require.JSONEq(t, `[]`, string(body))
}
