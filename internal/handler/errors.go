package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/logger"
	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSeatUnavailable),
		errors.Is(err, model.ErrScheduleInUse),
		errors.Is(err, model.ErrMovieInUse),
		errors.Is(err, model.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": kind, "message": text}. Server side failures
// are logged and their details withheld from the client.
func fail(c echo.Context, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request().Context()).Error("request failed", "error", err)
		msg = "internal error"
		if errors.Is(err, model.ErrPersistence) {
			msg = "failed to persist changes"
		}
	}
	return c.JSON(status, echo.Map{"error": service.Kind(err), "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_error", "message": msg})
}

// intParam parses a non-negative integer path parameter.
func intParam(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
