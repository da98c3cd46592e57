package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAPIKey is the header the crawler sends its credential in.
const HeaderAPIKey = "X-API-Key"

// APIKey returns an Echo middleware that checks the X-API-Key header against
// the configured crawler key. Comparison is constant-time.
func APIKey(key string) echo.MiddlewareFunc {
	expected := digest(key)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderAPIKey)
			if got == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing api key")
			}
			if !hmac.Equal(digest(got), expected) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}

// digest hashes both sides so the comparison leaks nothing about key length.
func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
