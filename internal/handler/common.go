package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/service"
)

// getUserID extracts the authenticated user ID from the Echo context.  The
// JWT middleware stores the token's sub claim under "user_id".  User ids
// are opaque strings issued by the sign-in provider.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
	return "", service.ErrUnauthenticated
}

// pageParams reads page and page_size with the listing defaults (1 and 20,
// at most 100).
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}
	return page, ps
}
