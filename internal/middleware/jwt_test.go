package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-station-reservation/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var final echo.Context
	h := func(c echo.Context) error {
		final = c
		return c.String(http.StatusOK, "ok")
	}
	chained := h
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	if err := chained(c); err != nil {
		t.Fatalf("handler chain error: %v", err)
	}
	return rec, final
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, c := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if c == nil {
		t.Fatal("handler was not reached")
	}
	if role, _ := c.Get("role").(string); role != "CUSTOMER" {
		t.Fatalf("role = %v, want CUSTOMER", c.Get("role"))
	}
	if c.Get("user_id") == nil {
		t.Fatal("user_id missing from context")
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	if rec, _ := runProtected(t, "", JWTAuth(testSecret)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", rec.Code)
	}
	if rec, _ := runProtected(t, "Bearer not-a-jwt", JWTAuth(testSecret)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
	tok, err := utils.NewAccessToken("other-secret", 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	admin, err := utils.NewAccessToken(testSecret, 1, "ADMIN", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	customer, err := utils.NewAccessToken(testSecret, 2, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if rec, _ := runProtected(t, "Bearer "+admin.Token, JWTAuth(testSecret), RequireRole("ADMIN")); rec.Code != http.StatusOK {
		t.Fatalf("admin on admin route: status = %d, want 200", rec.Code)
	}
	if rec, _ := runProtected(t, "Bearer "+customer.Token, JWTAuth(testSecret), RequireRole("ADMIN")); rec.Code != http.StatusForbidden {
		t.Fatalf("customer on admin route: status = %d, want 403", rec.Code)
	}
	if rec, _ := runProtected(t, "Bearer "+customer.Token, JWTAuth(testSecret), RequireRole("ADMIN", "CUSTOMER")); rec.Code != http.StatusOK {
		t.Fatalf("customer on read route: status = %d, want 200", rec.Code)
	}
}
