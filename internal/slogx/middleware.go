package slogx

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orgatagova/orgatagova/internal/idx"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// Middleware logs requests and attaches a contextual logger into the
// request context.  The request id is taken from X-Request-ID when present
// and generated otherwise.
func Middleware(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			r := c.Request()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = idx.New().String()
			}
			c.Response().Header().Set(RequestIDHeader, reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", c.RealIP(),
			)
			c.SetRequest(r.WithContext(WithContext(r.Context(), logger)))

			err := next(c)
			if err != nil {
				// let echo render the error so the logged status is final
				c.Error(err)
			}

			logger.Info("http_request",
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			)
			return nil
		}
	}
}
