package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type seatReq struct {
	Date string `json:"date"`
	Seat string `json:"seat"`
}

type layoutReq struct {
	Date string `json:"date"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// AddSeat handles POST /v1/admin/movies/:id/seats with {"date", "seat"}.
func (h *AdminHandler) AddSeat(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Svc.AddSeat(c.Request().Context(), id, req.Date, req.Seat); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie_id": id, "date": req.Date, "seat": req.Seat})
}

// RemoveSeat handles DELETE /v1/admin/movies/:id/seats/:seat?date=.
func (h *AdminHandler) RemoveSeat(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return badRequest(c, "date is required")
	}
	if err := h.Svc.RemoveSeat(c.Request().Context(), id, date, c.Param("seat")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResizeLayout handles PUT /v1/admin/movies/:id/layout and returns the new
// seat layout.
func (h *AdminHandler) ResizeLayout(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var req layoutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	layout, err := h.Svc.ResizeSeats(c.Request().Context(), id, req.Date, req.Rows, req.Cols)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_id": id, "date": req.Date, "seats": layout})
}
