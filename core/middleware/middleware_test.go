package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-gateway/core/constants"
	"booking-gateway/core/utils"
	"booking-gateway/modules/ratelimit/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type stubLimiter struct {
	decision entity.Decision
	seen     string
}

func (s *stubLimiter) Admit(_ context.Context, identity string) entity.Decision {
	s.seen = identity
	return s.decision
}

func (s *stubLimiter) Limit() int64 { return s.decision.Limit }

func serve(t *testing.T, mw *Middleware, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var identity string
	e.POST("/x", func(c echo.Context) error {
		identity, _ = c.Get(constants.ContextIdentity).(string)
		return c.NoContent(http.StatusNoContent)
	}, mw.RateLimitMiddleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, identity
}

func TestRateLimitAllowed(t *testing.T) {
	lim := &stubLimiter{decision: entity.Decision{Allowed: true, Limit: 50, Remaining: 49}}
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Api-Key", "k1")

	rec, identity := serve(t, NewMiddleware(lim, utils.IdentityResolver{KeyHeader: "X-Api-Key"}), req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if identity != "key:k1" || lim.seen != "key:k1" {
		t.Errorf("identity = %q, limiter saw %q", identity, lim.seen)
	}
	if rec.Header().Get(constants.HeaderRateLimitLimit) != "50" || rec.Header().Get(constants.HeaderRateLimitRemaining) != "49" {
		t.Errorf("headers = %v", rec.Header())
	}
}

func TestRateLimitDenied(t *testing.T) {
	lim := &stubLimiter{decision: entity.Decision{Allowed: false, Limit: 50, RetryAfter: 1500 * time.Millisecond}}
	rec, _ := serve(t, NewMiddleware(lim, utils.IdentityResolver{}), httptest.NewRequest(http.MethodPost, "/x", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(constants.HeaderRetryAfter); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}

	var body struct {
		Code         string `json:"code"`
		RetryAfterMs int64  `json:"retryAfterMs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "RATE_LIMITED" || body.RetryAfterMs != 1500 {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimitDegradedClosed(t *testing.T) {
	lim := &stubLimiter{decision: entity.Decision{Allowed: false, Degraded: true, Limit: 50, RetryAfter: time.Second}}
	rec, _ := serve(t, NewMiddleware(lim, utils.IdentityResolver{}), httptest.NewRequest(http.MethodPost, "/x", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(constants.HeaderRateLimitLimit) != "" {
		t.Errorf("limit header set while degraded")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	rec, identity := serve(t, NewMiddleware(nil, utils.IdentityResolver{}), req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if identity != "ip:192.0.2.1" {
		t.Errorf("identity = %q", identity)
	}
}

func serveAdmin(mw *Middleware, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.POST("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, mw.AdminMiddleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminMiddleware(t *testing.T) {
	secret := []byte("s3cret")
	token := func(sub string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + s
	}
	mw := NewMiddleware(nil, utils.IdentityResolver{JWTSecret: secret}).
		WithAdmin(AdminPolicy{Key: "ops-key", Subjects: []string{"ops"}})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"wrong key", constants.HeaderAdminKey, "guess", http.StatusForbidden},
		{"admin key", constants.HeaderAdminKey, "ops-key", http.StatusNoContent},
		{"non-admin subject", "Authorization", token("alice"), http.StatusForbidden},
		{"admin subject", "Authorization", token("ops"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if rec := serveAdmin(mw, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAdminMiddlewareWithoutPolicyRejectsAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set(constants.HeaderAdminKey, "")
	req.Header.Set("Authorization", "Bearer anything")

	rec := serveAdmin(NewMiddleware(nil, utils.IdentityResolver{}), req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}
