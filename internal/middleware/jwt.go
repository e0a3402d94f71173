package middleware // reusable HTTP middleware for the echo router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/logger"
	"github.com/iliyamo/cinema-ledger/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the token's subject and role in the echo context. The secret must
// match the one used when issuing tokens. Handlers behind it read the caller
// through Username and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ctxUsername, claims.Subject)
			c.Set(ctxRole, claims.Role)
			// request-scoped loggers pick up the caller from the context
			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithUsername(req.Context(), claims.Subject)))
			return next(c)
		}
	}
}
