package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/handler"
	"github.com/iliyamo/cinema-ledger/internal/middleware"
	"github.com/iliyamo/cinema-ledger/internal/model"
)

// RegisterCustomer registers booking endpoints under /v1/bookings. Any
// signed-in user may book; the handler limits changes to the caller's own
// bookings unless the caller is an admin.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
		invalidate,
	)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Edit)
	g.DELETE("/:id", h.Cancel)
}
