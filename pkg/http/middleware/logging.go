package middleware

import (
	"time"

	applogger "FinMerge/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request after the response is written.
// Server errors are logged at warn, everything else at debug.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", c.Request().Method),
				applogger.String("route", c.Path()),
				applogger.String("uri", c.Request().RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Int64("bytes", c.Response().Size),
				applogger.Duration("took", time.Since(start)),
			}
			if status >= 500 {
				l.Warn("http request failed", fields...)
			} else {
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
