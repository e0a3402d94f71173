package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/handler"
	"github.com/iliyamo/cinema-ledger/internal/middleware"
	"github.com/iliyamo/cinema-ledger/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin. All
// routes require a valid JWT and the ADMIN role. Successful writes purge
// the response cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		invalidate,
	)

	// ---- Movies ----
	g.POST("/movies", h.AddMovie)
	g.PATCH("/movies/:id", h.EditMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)

	// ---- Schedules ----
	g.POST("/movies/:id/schedules", h.AddSchedule)
	g.DELETE("/movies/:id/schedules/:index", h.RemoveSchedule)

	// ---- Seats ----
	g.POST("/movies/:id/seats", h.AddSeat)
	g.DELETE("/movies/:id/seats/:seat", h.RemoveSeat)
	g.PUT("/movies/:id/layout", h.ResizeLayout)

	// ---- Bookings and reports ----
	g.GET("/bookings", h.ListBookings)
	g.GET("/reports/sales", h.SalesReport)
	g.GET("/consistency", h.Consistency)
}
