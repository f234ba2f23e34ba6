package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"servicos/internal/core"
)

func TestIdentityFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		status  core.AuthStatus
		admin   bool
	}{
		{"no headers", nil, core.AuthSignedOut, false},
		{"loading", map[string]string{HeaderAuthStatus: " Loading "}, core.AuthLoading, false},
		{"user", map[string]string{HeaderUserID: "u1", HeaderUserUsername: "alice"}, core.AuthSignedIn, false},
		{"admin role is case insensitive", map[string]string{HeaderUserID: "adm", HeaderUserRole: "Admin"}, core.AuthSignedIn, true},
		{"blank id", map[string]string{HeaderUserID: "  ", HeaderUserRole: "admin"}, core.AuthSignedOut, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			id := IdentityFromRequest(req)
			if id.Status != tt.status {
				t.Errorf("Status = %v, want %v", id.Status, tt.status)
			}
			if id.IsAdmin() != tt.admin {
				t.Errorf("IsAdmin = %v, want %v", id.IsAdmin(), tt.admin)
			}
		})
	}
}

func TestIdentityFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if identityFrom(req.Context()).IsSignedIn() {
		t.Error("missing identity should be signed out")
	}
}
