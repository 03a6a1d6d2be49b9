package middleware

import "github.com/labstack/echo/v4"

const anonymous = "anon"

// currentUserID returns the id stored by JWTAuth, or "anon" on public
// routes.  It only feeds rate limit keys and access checks, never business
// decisions.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return anonymous
}
