package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

// AdminHandler serves catalog, seat and reporting operations. Routes are
// guarded by the ADMIN role.
type AdminHandler struct {
	Svc service.BookingUseCase
}

func NewAdminHandler(svc service.BookingUseCase) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

type movieReq struct {
	Title string      `json:"title"`
	Genre string      `json:"genre"`
	Price model.Money `json:"price"`
}

type scheduleReq struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// AddMovie handles POST /v1/admin/movies.
func (h *AdminHandler) AddMovie(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Svc.AddMovie(c.Request().Context(), req.Title, req.Genre, req.Price)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// EditMovie handles PATCH /v1/admin/movies/:id. Omitted fields, and a
// price of zero or less, keep their current values.
func (h *AdminHandler) EditMovie(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Svc.EditMovie(c.Request().Context(), id, service.MoviePatch{Title: req.Title, Genre: req.Genre, Price: req.Price})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMovie handles DELETE /v1/admin/movies/:id?cascade=true. Without
// cascade a movie that still has bookings is kept and 409 is returned.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	cascade := false
	if raw := c.QueryParam("cascade"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "cascade must be true or false")
		}
		cascade = v
	}
	res, err := h.Svc.DeleteMovie(c.Request().Context(), id, cascade)
	if err != nil {
		return fail(c, err)
	}
	if res.Cancelled == nil {
		res.Cancelled = []model.Booking{}
	}
	return c.JSON(http.StatusOK, res)
}

// AddSchedule handles POST /v1/admin/movies/:id/schedules.
func (h *AdminHandler) AddSchedule(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Svc.AddSchedule(c.Request().Context(), id, req.Date, req.Time)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// RemoveSchedule handles DELETE /v1/admin/movies/:id/schedules/:index
// with a zero-based index.
func (h *AdminHandler) RemoveSchedule(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	index, ok := intParam(c, "index")
	if !ok {
		return badRequest(c, "invalid schedule index")
	}
	removed, err := h.Svc.RemoveSchedule(c.Request().Context(), id, index)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, removed)
}

// ListBookings handles GET /v1/admin/bookings.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	view := h.Svc.ListAllBookings()
	if view.Bookings == nil {
		view.Bookings = []model.Booking{}
	}
	return c.JSON(http.StatusOK, view)
}

// SalesReport handles GET /v1/admin/reports/sales.
func (h *AdminHandler) SalesReport(c echo.Context) error {
	r := h.Svc.SalesReport()
	if r.Lines == nil {
		r.Lines = []service.SalesLine{}
	}
	return c.JSON(http.StatusOK, r)
}

// Consistency handles GET /v1/admin/consistency.
func (h *AdminHandler) Consistency(c echo.Context) error {
	drift := h.Svc.CheckConsistency()
	if drift == nil {
		drift = []service.Drift{}
	}
	return c.JSON(http.StatusOK, echo.Map{"consistent": len(drift) == 0, "drift": drift})
}
