// Package queue carries booking events to a message broker and back out
// into the booking log.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking change has been persisted. It
// carries enough detail for consumers to log or notify without reading the
// ledger.
type BookingEvent struct {
	EventID      string            `json:"event_id"`
	Type         string            `json:"type"`
	BookingID    int               `json:"booking_id"`
	Customer     string            `json:"customer"`
	MovieID      int               `json:"movie_id"`
	MovieTitle   string            `json:"movie_title"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	Seat         string            `json:"seat"`
	PreviousSeat string            `json:"previous_seat,omitempty"`
	Price        model.Money       `json:"price"`
	PaymentMode  model.PaymentMode `json:"payment_mode"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NewBookingEvent stamps a fresh event id and the current UTC time.
func NewBookingEvent(eventType string, b model.Booking, movieTitle string) BookingEvent {
	return BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		Customer:    b.CustomerUsername,
		MovieID:     b.MovieID,
		MovieTitle:  movieTitle,
		Date:        b.Schedule.Date,
		Time:        b.Schedule.Time,
		Seat:        b.Seat,
		Price:       b.Price,
		PaymentMode: b.PaymentMode,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers booking events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }
