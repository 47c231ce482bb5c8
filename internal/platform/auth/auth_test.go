package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, sub, issuer string, key []byte) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runJWT(t *testing.T, cfg JWTConfig, authorization string) (uuid.UUID, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got uuid.UUID
	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		got = ParticipantFromContext(c.Request().Context())
		return nil
	})
	return got, handler(c)
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	pid := uuid.New()
	token := signToken(t, pid.String(), "careledger", testKey)

	got, err := runJWT(t, JWTConfig{Issuer: "careledger", SigningKey: testKey}, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != pid {
		t.Errorf("participant = %s, want %s", got, pid)
	}
}

func TestJWTMiddlewareRejections(t *testing.T) {
	pid := uuid.New()
	cfg := JWTConfig{Issuer: "careledger", SigningKey: testKey}

	cases := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong key", "Bearer " + signToken(t, pid.String(), "careledger", []byte("other-key"))},
		{"wrong issuer", "Bearer " + signToken(t, pid.String(), "someone-else", testKey)},
		{"non-uuid subject", "Bearer " + signToken(t, "alice", "careledger", testKey)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runJWT(t, cfg, tc.authorization)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %v", err)
			}
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	pid := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ParticipantHeader, pid.String())
	c := e.NewContext(req, httptest.NewRecorder())

	var got uuid.UUID
	handler := DevAuthMiddleware()(func(c echo.Context) error {
		got = ParticipantFromContext(c.Request().Context())
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != pid {
		t.Errorf("participant = %s, want %s", got, pid)
	}
}

func TestDevAuthMiddlewareRejectsBadHeader(t *testing.T) {
	e := echo.New()
	handler := DevAuthMiddleware()(func(c echo.Context) error { return nil })

	for _, raw := range []string{"", "not-a-uuid"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if raw != "" {
			req.Header.Set(ParticipantHeader, raw)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %v", raw, err)
		}
	}
}

func TestParticipantFromContextDefault(t *testing.T) {
	if got := ParticipantFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != uuid.Nil {
		t.Errorf("participant without middleware = %s, want Nil", got)
	}
}
