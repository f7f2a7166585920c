package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newAuthTestServer(secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin")
	g.Use(AdminAuthMiddleware(secret))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
	}{
		{"correct secret", "geheim", "geheim", http.StatusOK},
		{"wrong secret", "geheim", "falsch", http.StatusUnauthorized},
		{"missing header", "geheim", "", http.StatusUnauthorized},
		{"prefix of secret", "geheim", "geh", http.StatusUnauthorized},
		{"secret with suffix", "geheim", "geheimX", http.StatusUnauthorized},
		{"empty configured secret locks everyone out", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAuthTestServer(tt.secret)
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
