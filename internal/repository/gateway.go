package repository

import (
	"context"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Snapshot is the complete persisted state.
//
// Fields:
//  Users        – directory accounts in registration order.
//  Movies       – catalog entries with their schedules, in catalog order.
//  Bookings     – active bookings in insertion order.
//  Seats        – one record per seat of every seat map.
//  SeatsMissing – set by Load when no seat stream exists; callers then
//                 regenerate default grids for every (movie, date).
type Snapshot struct {
	Users        []model.User
	Movies       []model.Movie
	Bookings     []model.Booking
	Seats        []model.SeatRecord
	SeatsMissing bool
}

// Gateway reads and writes snapshots. Implementations never hold on to the
// snapshot passed to Save.
type Gateway interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
