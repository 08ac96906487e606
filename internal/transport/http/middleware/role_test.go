package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/event-locator/internal/domain"
	jwtinfra "github.com/event-locator/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
)

func serveWithRole(role string, allowed ...string) *httptest.ResponseRecorder {
	ctx := WithClaims(context.Background(), &jwtinfra.Claims{UserID: "u1", Role: role})
	req := httptest.NewRequest(http.MethodPost, "/api/categories", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	RequireRole(allowed...)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func TestRequireRole_NoClaimsInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/categories", nil)
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"user on admin route", domain.RoleUser, []string{domain.RoleAdmin}, http.StatusForbidden},
		{"admin on admin route", domain.RoleAdmin, []string{domain.RoleAdmin}, http.StatusOK},
		{"user among several", domain.RoleUser, []string{domain.RoleAdmin, domain.RoleUser}, http.StatusOK},
		{"empty role", "", []string{domain.RoleAdmin}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWithRole(tt.role, tt.allowed...)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"forbidden"}`, rr.Body.String())
			}
		})
	}
}
