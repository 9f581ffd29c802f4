package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthentication(t *testing.T) {
	ts := newTestServer(t)
	valid := ts.createUser(t, "alice1", "p@ss")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Username: "alice1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Username:         "alice1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + valid},
		{"no token", "Bearer"},
		{"malformed token", "Bearer abc.def"},
		{"expired token", "Bearer " + expired},
		{"bad signature", "Bearer " + forged},
	}

	var firstBody string
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/movies", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			ts.echo.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
			assert.Contains(t, rec.Header().Values(echo.HeaderVary), echo.HeaderAuthorization)

			if firstBody == "" {
				firstBody = rec.Body.String()
			}
			assert.Equal(t, firstBody, rec.Body.String())
		})
	}

	rec := ts.do(t, http.MethodGet, "/movies", "", valid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"no origin", "", http.StatusOK, ""},
		{"trusted origin", "http://localhost:1234", http.StatusOK, "http://localhost:1234"},
		{"untrusted origin", "http://evil.example", http.StatusForbidden, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tc.origin)
			}
			rec := httptest.NewRecorder()
			ts.echo.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantAllow, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	assert.Equal(t,
		"The CORS policy for this application doesn't allow access from origin http://evil.example",
		decode(t, rec)["error"])
}

func TestRecoverPanic(t *testing.T) {
	ts := newTestServer(t)
	ts.echo.GET("/boom", func(echo.Context) error {
		panic("boom")
	})

	rec := ts.do(t, http.MethodGet, "/boom", "", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	assert.Equal(t, serverErrorMessage, decode(t, rec)["error"])
}

func TestRateLimiter(t *testing.T) {
	ts := newTestServer(t)
	ts.app.config.limiter = rateLimitConfig{rps: 1, burst: 2, enabled: true}
	ts.echo = ts.app.newServer()

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodGet, "/", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decode(t, rec)["error"])
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", "", "")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/nowhere", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}
