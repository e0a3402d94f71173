package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

// PublicHandler serves the catalog and seat availability to anyone.
type PublicHandler struct {
	Svc service.BookingUseCase
}

func NewPublicHandler(svc service.BookingUseCase) *PublicHandler {
	return &PublicHandler{Svc: svc}
}

// ListMovies returns {"items": [...]} in catalog order.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	movies := h.Svc.ListMovies()
	if movies == nil {
		movies = []model.Movie{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	m, err := h.Svc.GetMovie(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ListSchedules returns the movie's showings. The index of each item is
// the one admin schedule removal expects.
func (h *PublicHandler) ListSchedules(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	schedules, err := h.Svc.ListSchedulesFor(id)
	if err != nil {
		return fail(c, err)
	}
	type item struct {
		Index int `json:"index"`
		model.Schedule
	}
	out := make([]item, 0, len(schedules))
	for i, s := range schedules {
		out = append(out, item{Index: i, Schedule: s})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SeatLayout handles GET /v1/movies/:id/seats?date=YYYY-MM-DD. Seats are
// ordered by row, then number.
func (h *PublicHandler) SeatLayout(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	date := c.QueryParam("date")
	if err := model.ValidateDate(date); err != nil {
		return fail(c, err)
	}
	layout, err := h.Svc.SeatLayout(id, date)
	if err != nil {
		return fail(c, err)
	}
	free := 0
	for _, s := range layout {
		if s.Available {
			free++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie_id":  id,
		"date":      date,
		"available": free,
		"seats":     layout,
	})
}
