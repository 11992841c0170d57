package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evcharge/internal/models"
	"evcharge/internal/service"
)

func passThrough(t *testing.T, hit *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour)
	signed, err := tokens.Generate("operator1", models.RoleStationOperator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var claimsSeen *service.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claimsSeen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(tokens)(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if claimsSeen == nil || claimsSeen.Subject != "operator1" {
		t.Fatalf("claims not propagated: %+v", claimsSeen)
	}

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	other := service.NewTokenService("other-secret", time.Hour)
	signed, err := other.Generate("operator1", models.RoleStationOperator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var hit bool
	handler := Auth(service.NewTokenService("test-secret", time.Hour))(passThrough(t, &hit))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("foreign token accepted: status=%d hit=%v", rec.Code, hit)
	}
}

func TestRequireRole(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour)

	check := func(role string, want int) {
		t.Helper()
		signed, err := tokens.Generate("subject", role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		var hit bool
		handler := Auth(tokens)(RequireRole(models.RoleBackoffice, models.RoleStationOperator)(passThrough(t, &hit)))
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("role %q: status = %d, want %d", role, rec.Code, want)
		}
	}

	check(models.RoleBackoffice, http.StatusNoContent)
	check(models.RoleStationOperator, http.StatusNoContent)
	check(models.RoleEVOwner, http.StatusForbidden)
	check(models.RoleAdmin, http.StatusForbidden)
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	var hit bool
	handler := RequireRole(models.RoleAdmin)(passThrough(t, &hit))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden || hit {
		t.Fatalf("unauthenticated request passed role guard: status=%d hit=%v", rec.Code, hit)
	}
}
