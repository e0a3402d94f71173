package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/queue"
)

// CreateBookingInput names one seat for one showing.
type CreateBookingInput struct {
	Customer    string            `json:"-"`
	MovieID     int               `json:"movie_id"`
	Schedule    model.Schedule    `json:"schedule"`
	Seat        string            `json:"seat"`
	PaymentMode model.PaymentMode `json:"payment_mode"`
}

// EditBookingInput changes a booking. A nil Schedule, an empty Seat or an
// empty PaymentMode keeps the current value.
type EditBookingInput struct {
	Schedule    *model.Schedule   `json:"schedule,omitempty"`
	Seat        string            `json:"seat,omitempty"`
	PaymentMode model.PaymentMode `json:"payment_mode,omitempty"`
}

// BookingsView lists bookings together with their summed price.
type BookingsView struct {
	Bookings []model.Booking `json:"bookings"`
	Total    model.Money     `json:"total"`
}

// CreateBooking sells a seat at the movie's current price. The showing must
// be one of the movie's schedules and the seat must exist and be free.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	var created model.Booking
	err := s.mutate(ctx, "create_booking", func() ([]queue.BookingEvent, error) {
		customer := strings.TrimSpace(in.Customer)
		if customer == "" {
			return nil, fmt.Errorf("%w: customer is required", model.ErrValidation)
		}
		mode, err := model.ParsePaymentMode(string(in.PaymentMode))
		if err != nil {
			return nil, err
		}
		seat, err := model.NormalizeSeat(in.Seat)
		if err != nil {
			return nil, err
		}
		movie, err := s.scheduledMovie(in.MovieID, in.Schedule)
		if err != nil {
			return nil, err
		}
		if !s.st.seats.IsAvailable(movie.ID, in.Schedule.Date, seat) {
			return nil, fmt.Errorf("%w: %s on %s for movie %d", model.ErrSeatUnavailable, seat, in.Schedule.Date, movie.ID)
		}

		created = s.st.ledger.Add(model.Booking{
			CustomerUsername: customer,
			MovieID:          movie.ID,
			Schedule:         in.Schedule,
			Seat:             seat,
			Price:            movie.Price,
			PaymentMode:      mode,
		})
		s.st.seats.Book(movie.ID, in.Schedule.Date, seat)
		return []queue.BookingEvent{queue.NewBookingEvent(queue.BookingCreated, created, movie.Title)}, nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking created", "booking_id", created.ID, "customer", created.CustomerUsername,
		"movie_id", created.MovieID, "schedule", created.Schedule.String(), "seat", created.Seat)
	return created, nil
}

// EditBooking moves a booking to another showing or seat of the same movie,
// or changes its payment mode. The old seat is released only when the new
// one can be taken; otherwise the booking is left untouched and
// ErrSeatUnavailable is returned. The stored price becomes the movie's
// current price.
func (s *BookingService) EditBooking(ctx context.Context, id int, in EditBookingInput) (model.Booking, error) {
	var updated model.Booking
	err := s.mutate(ctx, "edit_booking", func() ([]queue.BookingEvent, error) {
		current, ok := s.st.ledger.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: booking %d", model.ErrNotFound, id)
		}
		movie, ok := s.st.catalog.Get(current.MovieID)
		if !ok {
			return nil, fmt.Errorf("%w: movie %d of booking %d", model.ErrNotFound, current.MovieID, id)
		}

		next := current
		if in.Schedule != nil {
			if _, err := s.scheduledMovie(movie.ID, *in.Schedule); err != nil {
				return nil, err
			}
			next.Schedule = *in.Schedule
		}
		if in.Seat != "" {
			seat, err := model.NormalizeSeat(in.Seat)
			if err != nil {
				return nil, err
			}
			next.Seat = seat
		}
		if in.PaymentMode != "" {
			mode, err := model.ParsePaymentMode(string(in.PaymentMode))
			if err != nil {
				return nil, err
			}
			next.PaymentMode = mode
		}
		next.Price = movie.Price

		moved := next.Schedule.Date != current.Schedule.Date || next.Seat != current.Seat
		if moved {
			s.st.seats.Free(movie.ID, current.Schedule.Date, current.Seat)
			if !s.st.seats.IsAvailable(movie.ID, next.Schedule.Date, next.Seat) {
				s.st.seats.Book(movie.ID, current.Schedule.Date, current.Seat)
				return nil, fmt.Errorf("%w: %s on %s for movie %d", model.ErrSeatUnavailable, next.Seat, next.Schedule.Date, movie.ID)
			}
			s.st.seats.Book(movie.ID, next.Schedule.Date, next.Seat)
		}

		updated, _ = s.st.ledger.Update(id, next)
		ev := queue.NewBookingEvent(queue.BookingUpdated, updated, movie.Title)
		if moved {
			ev.PreviousSeat = current.Seat
		}
		return []queue.BookingEvent{ev}, nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking updated", "booking_id", updated.ID, "schedule", updated.Schedule.String(), "seat", updated.Seat)
	return updated, nil
}

// CancelBooking releases the seat and removes the booking. Unknown ids
// return ErrNotFound.
func (s *BookingService) CancelBooking(ctx context.Context, id int) (model.Booking, error) {
	var removed model.Booking
	err := s.mutate(ctx, "cancel_booking", func() ([]queue.BookingEvent, error) {
		b, ok := s.st.ledger.Remove(id)
		if !ok {
			return nil, fmt.Errorf("%w: booking %d", model.ErrNotFound, id)
		}
		s.st.seats.Free(b.MovieID, b.Schedule.Date, b.Seat)
		removed = b
		title := ""
		if m, ok := s.st.catalog.Get(b.MovieID); ok {
			title = m.Title
		}
		return []queue.BookingEvent{queue.NewBookingEvent(queue.BookingCancelled, b, title)}, nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking cancelled", "booking_id", removed.ID, "seat", removed.Seat)
	return removed, nil
}

func (s *BookingService) GetBooking(id int) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.ledger.Get(id)
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: booking %d", model.ErrNotFound, id)
	}
	return b, nil
}

// ListBookingsFor returns the customer's bookings in booking order.
func (s *BookingService) ListBookingsFor(username string) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ledger.FindByCustomer(username)
}

// ListAllBookings returns every booking and the summed price.
func (s *BookingService) ListAllBookings() BookingsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := BookingsView{Bookings: s.st.ledger.All()}
	for _, b := range view.Bookings {
		view.Total += b.Price
	}
	return view
}

// scheduledMovie returns the movie when it lists the showing. Callers hold
// s.mu.
func (s *BookingService) scheduledMovie(movieID int, sched model.Schedule) (model.Movie, error) {
	movie, ok := s.st.catalog.Get(movieID)
	if !ok {
		return model.Movie{}, fmt.Errorf("%w: movie %d", model.ErrNotFound, movieID)
	}
	if !movie.HasSchedule(sched) {
		return model.Movie{}, fmt.Errorf("%w: schedule %s of movie %d", model.ErrNotFound, sched, movieID)
	}
	return movie, nil
}
