package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAPIKey(t *testing.T) {
	e := echo.New()
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, APIKey("secret"))

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"valid", "secret", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "secrets", http.StatusUnauthorized},
		{"prefix", "secre", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.key != "" {
				req.Header.Set(HeaderAPIKey, tc.key)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
