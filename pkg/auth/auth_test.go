package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStore_CreateAndAuthenticate(t *testing.T) {
	s := NewStore()

	if err := s.CreateUser("alice", "secret", RoleAdmin); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token, err := s.Authenticate("alice", "secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	user, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if user.Username != "alice" || user.Role != RoleAdmin {
		t.Errorf("Unexpected user: %+v", user)
	}
}

func TestStore_WrongPassword(t *testing.T) {
	s := NewStore()
	s.CreateUser("alice", "secret", RoleViewer)

	if _, err := s.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate("nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestStore_DuplicateUser(t *testing.T) {
	s := NewStore()
	s.CreateUser("alice", "secret", RoleViewer)

	if err := s.CreateUser("alice", "other", RoleAdmin); !errors.Is(err, ErrUserExists) {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}
}

func TestStore_RevokeToken(t *testing.T) {
	s := NewStore()
	s.CreateUser("alice", "secret", RoleViewer)

	token, _ := s.Authenticate("alice", "secret")
	s.RevokeToken(token)

	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after revoke, got %v", err)
	}
}

func TestStore_DeleteUserRevokesSessions(t *testing.T) {
	s := NewStore()
	s.CreateUser("alice", "secret", RoleViewer)

	token, _ := s.Authenticate("alice", "secret")
	if err := s.DeleteUser("alice"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := s.ValidateToken(token); err == nil {
		t.Error("Expected token to be invalid after user deletion")
	}
	if err := s.DeleteUser("alice"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUser_Permissions(t *testing.T) {
	s := NewStore()
	s.CreateUser("admin", "a", RoleAdmin)
	s.CreateUser("viewer", "v", RoleViewer)

	adminToken, _ := s.Authenticate("admin", "a")
	viewerToken, _ := s.Authenticate("viewer", "v")

	admin, _ := s.ValidateToken(adminToken)
	viewer, _ := s.ValidateToken(viewerToken)

	if !admin.HasPermission(PermissionManagePool) {
		t.Error("Admin should have managePool permission")
	}
	if viewer.HasPermission(PermissionManagePool) {
		t.Error("Viewer should not have managePool permission")
	}
	if !viewer.HasPermission(PermissionViewStats) {
		t.Error("Viewer should have viewStats permission")
	}
}

func TestMiddleware(t *testing.T) {
	s := NewStore()
	s.CreateUser("admin", "a", RoleAdmin)
	s.CreateUser("viewer", "v", RoleViewer)

	adminToken, _ := s.Authenticate("admin", "a")
	viewerToken, _ := s.Authenticate("viewer", "v")

	handler := s.Middleware(PermissionManagePool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/_pool/shutdown", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	// Bad token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/_pool/shutdown", nil)
	req.Header.Set("Authorization", "Bearer nope")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", rec.Code)
	}

	// Insufficient role
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/_pool/shutdown", nil)
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for viewer, got %d", rec.Code)
	}

	// Admin passes
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/_pool/shutdown", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin, got %d", rec.Code)
	}
}
