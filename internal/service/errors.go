package service

import (
	"errors"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Kind names the error kind of err for metrics and API responses. nil is
// "ok"; errors outside the model's kinds are "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrSeatUnavailable):
		return "seat_unavailable"
	case errors.Is(err, model.ErrScheduleInUse):
		return "schedule_in_use"
	case errors.Is(err, model.ErrMovieInUse):
		return "movie_in_use"
	case errors.Is(err, model.ErrValidation):
		return "validation_error"
	case errors.Is(err, model.ErrPersistence):
		return "persistence_error"
	case errors.Is(err, model.ErrUserExists):
		return "user_exists"
	case errors.Is(err, model.ErrUnauthorized):
		return "unauthorized"
	}
	return "internal"
}
