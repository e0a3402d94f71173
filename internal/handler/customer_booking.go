package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/middleware"
	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

// BookingHandler serves the caller's own bookings. Admins may edit and
// cancel any booking; customers touching someone else's booking get 404.
type BookingHandler struct {
	Svc service.BookingUseCase
}

func NewBookingHandler(svc service.BookingUseCase) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	MovieID     int    `json:"movie_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Seat        string `json:"seat"`
	PaymentMode string `json:"payment_mode"`
}

type editBookingReq struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Seat        string `json:"seat"`
	PaymentMode string `json:"payment_mode"`
}

// List returns the caller's bookings with their total.
func (h *BookingHandler) List(c echo.Context) error {
	items := h.Svc.ListBookingsFor(middleware.Username(c))
	view := service.BookingsView{Bookings: items}
	if view.Bookings == nil {
		view.Bookings = []model.Booking{}
	}
	for _, b := range items {
		view.Total += b.Price
	}
	return c.JSON(http.StatusOK, view)
}

// Create books one seat for the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.Svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		Customer:    middleware.Username(c),
		MovieID:     req.MovieID,
		Schedule:    model.Schedule{Date: req.Date, Time: req.Time},
		Seat:        req.Seat,
		PaymentMode: model.PaymentMode(req.PaymentMode),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Edit moves a booking to another showing or seat, or changes its payment
// mode. Date and time must be given together.
func (h *BookingHandler) Edit(c echo.Context) error {
	id, done, err := h.owned(c)
	if done {
		return err
	}
	var req editBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in := service.EditBookingInput{Seat: req.Seat, PaymentMode: model.PaymentMode(req.PaymentMode)}
	switch {
	case req.Date != "" && req.Time != "":
		in.Schedule = &model.Schedule{Date: req.Date, Time: req.Time}
	case req.Date != "" || req.Time != "":
		return badRequest(c, "date and time must be given together")
	}
	b, err := h.Svc.EditBooking(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel releases the seat and deletes the booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, done, err := h.owned(c)
	if done {
		return err
	}
	if _, err := h.Svc.CancelBooking(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// owned resolves the :id parameter to a booking the caller may change.
// When done is true the response has been written and err is its result.
func (h *BookingHandler) owned(c echo.Context) (id int, done bool, err error) {
	id, ok := intParam(c, "id")
	if !ok {
		return 0, true, badRequest(c, "invalid booking id")
	}
	b, err := h.Svc.GetBooking(id)
	if err != nil {
		return 0, true, fail(c, err)
	}
	if !middleware.IsAdmin(c) && b.CustomerUsername != middleware.Username(c) {
		return 0, true, c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "booking not found"})
	}
	return id, false, nil
}
