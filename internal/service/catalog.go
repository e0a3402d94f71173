package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/queue"
)

// MoviePatch carries an edit. Empty strings and a price <= 0 keep the
// current values, so a movie cannot be made free through an edit.
type MoviePatch struct {
	Title string      `json:"title"`
	Genre string      `json:"genre"`
	Price model.Money `json:"price"`
}

// DeleteMovieResult reports what a delete removed.
type DeleteMovieResult struct {
	Movie     model.Movie     `json:"movie"`
	Cancelled []model.Booking `json:"cancelled_bookings"`
}

func (s *BookingService) AddMovie(ctx context.Context, title, genre string, price model.Money) (model.Movie, error) {
	title, genre = strings.TrimSpace(title), strings.TrimSpace(genre)
	var created model.Movie
	err := s.mutate(ctx, "add_movie", func() ([]queue.BookingEvent, error) {
		if title == "" || genre == "" {
			return nil, fmt.Errorf("%w: title and genre are required", model.ErrValidation)
		}
		if price < 0 {
			return nil, fmt.Errorf("%w: price %s is negative", model.ErrValidation, price)
		}
		created = s.st.catalog.AddMovie(title, genre, price)
		return nil, nil
	})
	if err != nil {
		return model.Movie{}, err
	}
	s.log.Info("movie added", "movie_id", created.ID, "title", created.Title)
	return created, nil
}

// EditMovie applies patch. Existing bookings keep the price they were sold
// at.
func (s *BookingService) EditMovie(ctx context.Context, id int, patch MoviePatch) (model.Movie, error) {
	var edited model.Movie
	err := s.mutate(ctx, "edit_movie", func() ([]queue.BookingEvent, error) {
		var err error
		edited, err = s.st.catalog.EditMovie(id, strings.TrimSpace(patch.Title), strings.TrimSpace(patch.Genre), patch.Price)
		return nil, err
	})
	if err != nil {
		return model.Movie{}, err
	}
	return edited, nil
}

// DeleteMovie removes a movie. When bookings reference it the call fails
// with ErrMovieInUse unless cascade is set, in which case every booking of
// the movie is cancelled and all its seat maps are dropped first.
func (s *BookingService) DeleteMovie(ctx context.Context, id int, cascade bool) (DeleteMovieResult, error) {
	var res DeleteMovieResult
	err := s.mutate(ctx, "delete_movie", func() ([]queue.BookingEvent, error) {
		movie, ok := s.st.catalog.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: movie %d", model.ErrNotFound, id)
		}
		if n := len(s.st.ledger.ForMovie(id)); n > 0 && !cascade {
			return nil, fmt.Errorf("%w: movie %d has %d bookings", model.ErrMovieInUse, id, n)
		}

		res.Cancelled = s.st.ledger.RemoveForMovie(id)
		s.st.seats.RemoveMovie(id)
		s.st.catalog.Delete(id)
		res.Movie = movie

		events := make([]queue.BookingEvent, 0, len(res.Cancelled))
		for _, b := range res.Cancelled {
			events = append(events, queue.NewBookingEvent(queue.BookingCancelled, b, movie.Title))
		}
		return events, nil
	})
	if err != nil {
		return DeleteMovieResult{}, err
	}
	s.log.Info("movie deleted", "movie_id", id, "cancelled_bookings", len(res.Cancelled))
	return res, nil
}

// AddSchedule appends a showing. A seat map for the date is created only
// when none exists, so bookings on another showing of the same date keep
// their seats.
func (s *BookingService) AddSchedule(ctx context.Context, movieID int, date, clock string) (model.Movie, error) {
	var updated model.Movie
	err := s.mutate(ctx, "add_schedule", func() ([]queue.BookingEvent, error) {
		sched, err := model.NewSchedule(strings.TrimSpace(date), strings.TrimSpace(clock))
		if err != nil {
			return nil, err
		}
		if err := s.st.catalog.AddSchedule(movieID, sched); err != nil {
			return nil, err
		}
		if !s.st.seats.Has(movieID, sched.Date) {
			s.st.seats.Initialize(movieID, sched.Date)
		}
		updated, _ = s.st.catalog.Get(movieID)
		return nil, nil
	})
	if err != nil {
		return model.Movie{}, err
	}
	return updated, nil
}

// RemoveSchedule deletes the showing at a zero-based index. It fails with
// ErrScheduleInUse while any booking holds a seat on that date. The date's
// seat map goes away once no other showing of the movie uses it.
func (s *BookingService) RemoveSchedule(ctx context.Context, movieID, index int) (model.Schedule, error) {
	var removed model.Schedule
	err := s.mutate(ctx, "remove_schedule", func() ([]queue.BookingEvent, error) {
		sched, err := s.st.catalog.ScheduleAt(movieID, index)
		if err != nil {
			return nil, err
		}
		if s.st.ledger.HasBookingFor(movieID, sched.Date) {
			return nil, fmt.Errorf("%w: movie %d has bookings on %s", model.ErrScheduleInUse, movieID, sched.Date)
		}
		if removed, err = s.st.catalog.RemoveSchedule(movieID, index); err != nil {
			return nil, err
		}
		if movie, _ := s.st.catalog.Get(movieID); !movie.HasDate(sched.Date) {
			s.st.seats.Remove(movieID, sched.Date)
		}
		return nil, nil
	})
	if err != nil {
		return model.Schedule{}, err
	}
	return removed, nil
}

// ListMovies returns the catalog in insertion order.
func (s *BookingService) ListMovies() []model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.catalog.List()
}

func (s *BookingService) GetMovie(id int) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.st.catalog.Get(id)
	if !ok {
		return model.Movie{}, fmt.Errorf("%w: movie %d", model.ErrNotFound, id)
	}
	return m, nil
}

// ListSchedulesFor returns the movie's showings in index order.
func (s *BookingService) ListSchedulesFor(movieID int) ([]model.Schedule, error) {
	m, err := s.GetMovie(movieID)
	if err != nil {
		return nil, err
	}
	return m.Schedules, nil
}
