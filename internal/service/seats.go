package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/queue"
)

// Largest grid ResizeSeats accepts.
const (
	MaxRows = 26
	MaxCols = 50
)

// AddSeat extends an existing seat map with an available seat.
func (s *BookingService) AddSeat(ctx context.Context, movieID int, date, seat string) error {
	return s.mutate(ctx, "add_seat", func() ([]queue.BookingEvent, error) {
		label, err := model.NormalizeSeat(seat)
		if err != nil {
			return nil, err
		}
		if err := s.seatMapExists(movieID, date); err != nil {
			return nil, err
		}
		if !s.st.seats.AddSeat(movieID, date, label) {
			return nil, fmt.Errorf("%w: seat %s already exists on %s", model.ErrValidation, label, date)
		}
		return nil, nil
	})
}

// RemoveSeat deletes a seat from a seat map. A seat held by a booking
// cannot be removed.
func (s *BookingService) RemoveSeat(ctx context.Context, movieID int, date, seat string) error {
	return s.mutate(ctx, "remove_seat", func() ([]queue.BookingEvent, error) {
		label, err := model.NormalizeSeat(seat)
		if err != nil {
			return nil, err
		}
		if err := s.seatMapExists(movieID, date); err != nil {
			return nil, err
		}
		if !s.st.seats.HasSeat(movieID, date, label) {
			return nil, fmt.Errorf("%w: seat %s on %s", model.ErrNotFound, label, date)
		}
		if s.st.ledger.HasBookingForSeat(movieID, date, label) {
			return nil, fmt.Errorf("%w: seat %s on %s is booked", model.ErrScheduleInUse, label, date)
		}
		s.st.seats.RemoveSeat(movieID, date, label)
		return nil, nil
	})
}

// ResizeSeats reshapes a seat map into a rows x cols grid. Missing grid
// seats are added as available and seats outside the grid are removed. It
// fails with ErrScheduleInUse, changing nothing, when a removed seat is
// booked.
func (s *BookingService) ResizeSeats(ctx context.Context, movieID int, date string, rows, cols int) ([]model.SeatState, error) {
	var layout []model.SeatState
	err := s.mutate(ctx, "resize_seats", func() ([]queue.BookingEvent, error) {
		if rows < 1 || rows > MaxRows || cols < 1 || cols > MaxCols {
			return nil, fmt.Errorf("%w: grid must be 1-%d rows by 1-%d seats", model.ErrValidation, MaxRows, MaxCols)
		}
		if err := s.seatMapExists(movieID, date); err != nil {
			return nil, err
		}
		want := make(map[string]bool, rows*cols)
		for _, label := range model.GridLabels(rows, cols) {
			want[label] = true
		}
		var drop []string
		for _, label := range s.st.seats.Labels(movieID, date) {
			if want[label] {
				continue
			}
			if s.st.ledger.HasBookingForSeat(movieID, date, label) {
				return nil, fmt.Errorf("%w: seat %s on %s is booked", model.ErrScheduleInUse, label, date)
			}
			drop = append(drop, label)
		}
		for _, label := range drop {
			s.st.seats.RemoveSeat(movieID, date, label)
		}
		for _, label := range model.GridLabels(rows, cols) {
			s.st.seats.AddSeat(movieID, date, label)
		}
		layout, _ = s.st.seats.Layout(movieID, date)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// SeatLayout lists every seat of a showing date with its availability,
// ordered by row then number.
func (s *BookingService) SeatLayout(movieID int, date string) ([]model.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seatMapExists(movieID, date); err != nil {
		return nil, err
	}
	layout, _ := s.st.seats.Layout(movieID, date)
	return layout, nil
}

// IsSeatAvailable is false for unknown movies, dates and seats.
func (s *BookingService) IsSeatAvailable(movieID int, date, seat string) bool {
	label, err := model.NormalizeSeat(seat)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.seats.IsAvailable(movieID, date, label)
}

// seatMapExists checks the movie, then its seat map. Callers hold s.mu.
func (s *BookingService) seatMapExists(movieID int, date string) error {
	if _, ok := s.st.catalog.Get(movieID); !ok {
		return fmt.Errorf("%w: movie %d", model.ErrNotFound, movieID)
	}
	if !s.st.seats.Has(movieID, date) {
		return fmt.Errorf("%w: no seat map for movie %d on %s", model.ErrNotFound, movieID, date)
	}
	return nil
}
