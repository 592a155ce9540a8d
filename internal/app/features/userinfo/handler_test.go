package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/scripthub/internal/app/features/userinfo"
	"github.com/dalemusser/scripthub/internal/app/system/auth"
)

func newTestHandler(t *testing.T) *userinfo.Handler {
	t.Helper()
	return userinfo.NewHandler()
}

func TestNewHandler(t *testing.T) {
	h := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/user", nil)
	rec := httptest.NewRecorder()

	handler.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}

	if isAuth, ok := response["isAuthenticated"].(bool); !ok || isAuth {
		t.Errorf("isAuthenticated: got %v, want false", response["isAuthenticated"])
	}
	if id, ok := response["id"].(string); !ok || id != "" {
		t.Errorf("id: got %q, want empty string", response["id"])
	}
	if username, ok := response["username"].(string); !ok || username != "" {
		t.Errorf("username: got %q, want empty string", response["username"])
	}
}

func TestServeUserInfo_Authenticated(t *testing.T) {
	handler := newTestHandler(t)

	sessionUser := &auth.SessionUser{
		ID:       184800000000000001,
		Username: "testuser",
		Avatar:   "a1b2c3",
	}

	req := httptest.NewRequest("GET", "/api/user", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	handler.ServeUserInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}

	if isAuth, ok := response["isAuthenticated"].(bool); !ok || !isAuth {
		t.Errorf("isAuthenticated: got %v, want true", response["isAuthenticated"])
	}
	if id, ok := response["id"].(string); !ok || id != "184800000000000001" {
		t.Errorf("id: got %q, want %q", response["id"], "184800000000000001")
	}
	if username, ok := response["username"].(string); !ok || username != "testuser" {
		t.Errorf("username: got %q, want %q", response["username"], "testuser")
	}
	if avatar, ok := response["avatar"].(string); !ok || avatar != "a1b2c3" {
		t.Errorf("avatar: got %q, want %q", response["avatar"], "a1b2c3")
	}
}

func TestServeUserInfo_ReturnsJSON(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/user", nil)
	rec := httptest.NewRecorder()

	handler.ServeUserInfo(rec, req)

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Errorf("response body is not valid JSON: %v", err)
	}
}
