package service

import (
	"sort"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// SalesLine is one movie's share of the sales report.
type SalesLine struct {
	MovieID int         `json:"movie_id"`
	Title   string      `json:"title"`
	Tickets int         `json:"tickets"`
	Revenue model.Money `json:"revenue"`
}

// SalesReport lists movies with at least one booking, in catalog order,
// followed by totals. Bookings whose movie no longer exists count towards
// the totals only.
type SalesReport struct {
	Lines        []SalesLine `json:"lines"`
	TotalTickets int         `json:"total_tickets"`
	TotalRevenue model.Money `json:"total_revenue"`
}

func (s *BookingService) SalesReport() SalesReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	tallies := s.st.ledger.RevenueAndCountByMovie()
	var r SalesReport
	for _, m := range s.st.catalog.List() {
		t, ok := tallies[m.ID]
		if !ok {
			continue
		}
		r.Lines = append(r.Lines, SalesLine{MovieID: m.ID, Title: m.Title, Tickets: t.Count, Revenue: t.Revenue})
	}
	for _, t := range tallies {
		r.TotalTickets += t.Count
		r.TotalRevenue += t.Revenue
	}
	return r
}

// Drift kinds reported by CheckConsistency.
const (
	DriftSeatWithoutBooking = "seat_booked_without_booking"
	DriftBookingSeatFree    = "booking_seat_available"
	DriftBookingSeatMissing = "booking_seat_missing"
)

// Drift is one disagreement between the seat maps and the ledger.
type Drift struct {
	Kind      string `json:"kind"`
	MovieID   int    `json:"movie_id"`
	Date      string `json:"date"`
	Seat      string `json:"seat"`
	BookingID int    `json:"booking_id,omitempty"`
}

// CheckConsistency compares seat availability with the ledger: a seat is
// taken exactly when a booking references it. Drift appears when the seat
// stream was regenerated or records were edited by hand.
func (s *BookingService) CheckConsistency() []Drift {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Drift
	held := make(map[model.SeatRecord]bool)
	for _, b := range s.st.ledger.All() {
		held[model.SeatRecord{MovieID: b.MovieID, Date: b.Schedule.Date, Label: b.Seat}] = true
		d := Drift{MovieID: b.MovieID, Date: b.Schedule.Date, Seat: b.Seat, BookingID: b.ID}
		switch {
		case !s.st.seats.HasSeat(b.MovieID, b.Schedule.Date, b.Seat):
			d.Kind = DriftBookingSeatMissing
			out = append(out, d)
		case s.st.seats.IsAvailable(b.MovieID, b.Schedule.Date, b.Seat):
			d.Kind = DriftBookingSeatFree
			out = append(out, d)
		}
	}
	for _, r := range s.st.seats.Records() {
		if r.Available {
			continue
		}
		if !held[model.SeatRecord{MovieID: r.MovieID, Date: r.Date, Label: r.Label}] {
			out = append(out, Drift{Kind: DriftSeatWithoutBooking, MovieID: r.MovieID, Date: r.Date, Seat: r.Label})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MovieID != out[j].MovieID {
			return out[i].MovieID < out[j].MovieID
		}
		return out[i].Date < out[j].Date
	})
	return out
}
