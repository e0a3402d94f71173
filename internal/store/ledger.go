package store

import "github.com/iliyamo/cinema-ledger/internal/model"

// Tally is the per-movie booking count and revenue.
type Tally struct {
	Count   int         `json:"count"`
	Revenue model.Money `json:"revenue"`
}

// Ledger holds active bookings in insertion order.
type Ledger struct {
	bookings []model.Booking
	nextID   int
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

// Add stores the booking under the next sequential id and returns it.
func (l *Ledger) Add(b model.Booking) model.Booking {
	b.ID = l.nextID
	l.nextID++
	l.bookings = append(l.bookings, b)
	return b
}

// Put appends a booking keeping its id. The id counter moves past it.
func (l *Ledger) Put(b model.Booking) {
	l.bookings = append(l.bookings, b)
	if b.ID >= l.nextID {
		l.nextID = b.ID + 1
	}
}

func (l *Ledger) index(id int) int {
	for i := range l.bookings {
		if l.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) Get(id int) (model.Booking, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Booking{}, false
	}
	return l.bookings[i], true
}

// Remove deletes the booking and returns it.
func (l *Ledger) Remove(id int) (model.Booking, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Booking{}, false
	}
	b := l.bookings[i]
	l.bookings = append(l.bookings[:i], l.bookings[i+1:]...)
	return b, true
}

// Update replaces the booking's record. The id and customer are kept from
// the stored booking whatever next carries.
func (l *Ledger) Update(id int, next model.Booking) (model.Booking, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Booking{}, false
	}
	next.ID = l.bookings[i].ID
	next.CustomerUsername = l.bookings[i].CustomerUsername
	l.bookings[i] = next
	return next, true
}

// All returns every booking in insertion order.
func (l *Ledger) All() []model.Booking {
	return append([]model.Booking(nil), l.bookings...)
}

func (l *Ledger) Len() int { return len(l.bookings) }

// FindByCustomer returns the customer's bookings in insertion order.
func (l *Ledger) FindByCustomer(username string) []model.Booking {
	var out []model.Booking
	for _, b := range l.bookings {
		if b.CustomerUsername == username {
			out = append(out, b)
		}
	}
	return out
}

// ForMovie returns the movie's bookings in insertion order.
func (l *Ledger) ForMovie(movieID int) []model.Booking {
	var out []model.Booking
	for _, b := range l.bookings {
		if b.MovieID == movieID {
			out = append(out, b)
		}
	}
	return out
}

// HasBookingFor reports whether any booking holds a seat for the movie on
// the date.
func (l *Ledger) HasBookingFor(movieID int, date string) bool {
	for _, b := range l.bookings {
		if b.MovieID == movieID && b.Schedule.Date == date {
			return true
		}
	}
	return false
}

// HasBookingForSeat reports whether a booking holds this exact seat.
func (l *Ledger) HasBookingForSeat(movieID int, date, seat string) bool {
	for _, b := range l.bookings {
		if b.MovieID == movieID && b.Schedule.Date == date && b.Seat == seat {
			return true
		}
	}
	return false
}

// RemoveForMovie deletes every booking of the movie and returns them.
func (l *Ledger) RemoveForMovie(movieID int) []model.Booking {
	var removed []model.Booking
	kept := l.bookings[:0]
	for _, b := range l.bookings {
		if b.MovieID == movieID {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	l.bookings = kept
	return removed
}

// RevenueAndCountByMovie tallies bookings per movie id.
func (l *Ledger) RevenueAndCountByMovie() map[int]Tally {
	out := make(map[int]Tally)
	for _, b := range l.bookings {
		t := out[b.MovieID]
		t.Count++
		t.Revenue += b.Price
		out[b.MovieID] = t
	}
	return out
}

// Clone returns a deep copy including the id counter.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{bookings: l.All(), nextID: l.nextID}
}
