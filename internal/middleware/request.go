package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns a request id (reusing the client's when present),
// stores it in the request context and logs one line per request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = logger.NewRequestID()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))

			err := next(c)
			if err != nil {
				// let the error handler write the response before logging the status
				c.Error(err)
			}

			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", c.RealIP(),
			}
			log := logger.From(c.Request().Context(), logger.Get())
			switch status := c.Response().Status; {
			case status >= 500:
				log.Error("request failed", append(fields, "error", err)...)
			case status >= 400:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request completed", fields...)
			}
			return nil
		}
	}
}

// Timeout bounds the request context, and with it persistence calls made by
// the handler.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	if d <= 0 {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
