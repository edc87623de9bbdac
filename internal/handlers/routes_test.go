package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"consultdesk/internal/middleware"
	"consultdesk/internal/models"
	"consultdesk/internal/scheduling/schedulingtest"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

func newTestRouter(t *testing.T) (*httprouter.Router, *middleware.Auth) {
	t.Helper()
	auth := middleware.NewAuth("test-secret", time.Hour, nil)
	return NewRouter(Deps{Auth: auth, Store: schedulingtest.NewMemoryStore()}), auth
}

func bearer(t *testing.T, auth *middleware.Auth, role string) string {
	t.Helper()
	token, _, err := auth.IssueToken(uuid.New(), role+"@consultdesk.test", role)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func TestRouterPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rec.Code != http.StatusNotFound || decodeBody(t, rec)["success"] != false {
		t.Errorf("unknown route = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouterRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, path := range []string{"/api/leads", "/api/counselors", "/api/visitors", "/api/auth/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, rec.Code)
		}
	}
}

func TestRouterRoleChecks(t *testing.T) {
	router, auth := newTestRouter(t)
	tests := []struct {
		role   string
		method string
		path   string
	}{
		{models.RoleFrontDesk, http.MethodDelete, "/api/counselors/" + uuid.NewString()},
		{models.RoleCounselor, http.MethodPost, "/api/countries"},
		{models.RoleCounselor, http.MethodGet, "/api/visitors"},
		{models.RoleFrontDesk, http.MethodPatch, "/api/meetings/" + uuid.NewString() + "/status"},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, auth, tt.role))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
		})
	}
}

func TestRouterLogoutRevokesToken(t *testing.T) {
	router, auth := newTestRouter(t)
	header := bearer(t, auth, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", header)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", rec.Code)
	}
}
