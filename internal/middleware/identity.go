package middleware

// identity.go holds the accessors for the caller identity that JWTAuth puts
// into the echo context. Unauthenticated requests read as "guest".

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Username returns the authenticated username, or "" when the request
// carries no valid token.
func Username(c echo.Context) string {
	s, _ := c.Get(ctxUsername).(string)
	return s
}

// Role returns the caller's role, or "" for anonymous requests.
func Role(c echo.Context) model.Role {
	s, _ := c.Get(ctxRole).(string)
	return model.Role(s)
}

// IsAdmin reports whether the caller holds the ADMIN role.
func IsAdmin(c echo.Context) bool {
	return Role(c) == model.RoleAdmin
}

// userID is the identity used in rate limit keys.
func userID(c echo.Context) string {
	if u := Username(c); u != "" {
		return u
	}
	return "guest"
}
