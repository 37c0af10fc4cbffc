package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCurrentUser_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user in a fresh request")
	}
}

func TestWithTestUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Role: "volunteer"})

	u, ok := auth.CurrentUser(req)
	if !ok {
		t.Fatal("expected user in context")
	}
	if u.ID != "abc" || u.Role != "volunteer" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestRequireSignedIn(t *testing.T) {
	h := auth.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	req = auth.WithTestUser(httptest.NewRequest("GET", "/api/projects", nil),
		&auth.SessionUser{ID: "abc", Role: "volunteer"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: got %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := auth.RequireRole("admin")(okHandler())

	// Anonymous → 401.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	// Wrong role → 403.
	req := auth.WithTestUser(httptest.NewRequest("GET", "/api/admin/stats", nil),
		&auth.SessionUser{ID: "abc", Role: "volunteer"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want 403", rec.Code)
	}

	// Matching role (case-insensitive) → 200.
	req = auth.WithTestUser(httptest.NewRequest("GET", "/api/admin/stats", nil),
		&auth.SessionUser{ID: "abc", Role: "Admin"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rec.Code)
	}
}
