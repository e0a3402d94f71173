// Package store holds the in-memory collections behind the booking service:
// seat maps, the movie catalog, the booking ledger and the user directory.
// None of the types lock; the service serializes access to them.
package store

import (
	"sort"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// SeatMaps tracks seat availability per (movie, date). true means the seat
// is available.
type SeatMaps struct {
	maps map[model.SeatKey]map[string]bool
}

func NewSeatMaps() *SeatMaps {
	return &SeatMaps{maps: make(map[model.SeatKey]map[string]bool)}
}

func key(movieID int, date string) model.SeatKey {
	return model.SeatKey{MovieID: movieID, Date: date}
}

// Initialize creates the default 80-seat grid for the key, all available.
// An existing map for the key is replaced.
func (s *SeatMaps) Initialize(movieID int, date string) {
	grid := make(map[string]bool, model.DefaultRows*model.DefaultCols)
	for _, label := range model.GridLabels(model.DefaultRows, model.DefaultCols) {
		grid[label] = true
	}
	s.maps[key(movieID, date)] = grid
}

// Has reports whether a map exists for the key.
func (s *SeatMaps) Has(movieID int, date string) bool {
	_, ok := s.maps[key(movieID, date)]
	return ok
}

// HasSeat reports whether the seat is part of the key's inventory.
func (s *SeatMaps) HasSeat(movieID int, date, seat string) bool {
	_, ok := s.maps[key(movieID, date)][seat]
	return ok
}

// IsAvailable is false when the key or the seat is unknown.
func (s *SeatMaps) IsAvailable(movieID int, date, seat string) bool {
	return s.maps[key(movieID, date)][seat]
}

// Book marks the seat taken. Unknown seats are left alone.
func (s *SeatMaps) Book(movieID int, date, seat string) {
	s.setIfPresent(movieID, date, seat, false)
}

// Free marks the seat available. Unknown seats are left alone.
func (s *SeatMaps) Free(movieID int, date, seat string) {
	s.setIfPresent(movieID, date, seat, true)
}

func (s *SeatMaps) setIfPresent(movieID int, date, seat string, available bool) {
	grid, ok := s.maps[key(movieID, date)]
	if !ok {
		return
	}
	if _, ok := grid[seat]; ok {
		grid[seat] = available
	}
}

// Set records a seat's state, creating the map and the seat when missing.
// Loaders use it to rebuild persisted inventory.
func (s *SeatMaps) Set(movieID int, date, seat string, available bool) {
	k := key(movieID, date)
	grid, ok := s.maps[k]
	if !ok {
		grid = make(map[string]bool)
		s.maps[k] = grid
	}
	grid[seat] = available
}

// Remove deletes the whole map for the key.
func (s *SeatMaps) Remove(movieID int, date string) {
	delete(s.maps, key(movieID, date))
}

// RemoveMovie deletes every map of the movie.
func (s *SeatMaps) RemoveMovie(movieID int) {
	for k := range s.maps {
		if k.MovieID == movieID {
			delete(s.maps, k)
		}
	}
}

// AddSeat adds an available seat to an existing map. It returns false when
// the map is missing or the seat already exists.
func (s *SeatMaps) AddSeat(movieID int, date, seat string) bool {
	grid, ok := s.maps[key(movieID, date)]
	if !ok {
		return false
	}
	if _, exists := grid[seat]; exists {
		return false
	}
	grid[seat] = true
	return true
}

// RemoveSeat deletes one seat. It returns false when the seat is unknown.
func (s *SeatMaps) RemoveSeat(movieID int, date, seat string) bool {
	grid, ok := s.maps[key(movieID, date)]
	if !ok {
		return false
	}
	if _, exists := grid[seat]; !exists {
		return false
	}
	delete(grid, seat)
	return true
}

// Labels returns the key's seat labels ordered by row, then number.
func (s *SeatMaps) Labels(movieID int, date string) []string {
	grid := s.maps[key(movieID, date)]
	out := make([]string, 0, len(grid))
	for label := range grid {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return model.LessSeat(out[i], out[j]) })
	return out
}

// Layout returns every seat of the key with its availability, ordered by
// row and number. ok is false when no map exists.
func (s *SeatMaps) Layout(movieID int, date string) (seats []model.SeatState, ok bool) {
	grid, ok := s.maps[key(movieID, date)]
	if !ok {
		return nil, false
	}
	for _, label := range s.Labels(movieID, date) {
		row, n, err := model.ParseSeat(label)
		if err != nil {
			row, n = "", 0
		}
		seats = append(seats, model.SeatState{Label: label, Row: row, Number: n, Available: grid[label]})
	}
	return seats, true
}

// Keys returns every (movie, date) with a map, ordered by movie then date.
func (s *SeatMaps) Keys() []model.SeatKey {
	out := make([]model.SeatKey, 0, len(s.maps))
	for k := range s.maps {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MovieID != out[j].MovieID {
			return out[i].MovieID < out[j].MovieID
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// Records flattens every map into persisted seat records in a stable order.
func (s *SeatMaps) Records() []model.SeatRecord {
	var out []model.SeatRecord
	for _, k := range s.Keys() {
		grid := s.maps[k]
		for _, label := range s.Labels(k.MovieID, k.Date) {
			out = append(out, model.SeatRecord{MovieID: k.MovieID, Date: k.Date, Label: label, Available: grid[label]})
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *SeatMaps) Clone() *SeatMaps {
	out := NewSeatMaps()
	for k, grid := range s.maps {
		cp := make(map[string]bool, len(grid))
		for label, available := range grid {
			cp[label] = available
		}
		out.maps[k] = cp
	}
	return out
}
