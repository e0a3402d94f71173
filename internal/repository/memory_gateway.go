package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// MemoryGateway keeps the last saved snapshot in memory. It backs the
// "memory" storage driver and service tests. FailSaves makes every Save
// return ErrPersistence.
type MemoryGateway struct {
	mu        sync.Mutex
	snap      *Snapshot
	saves     int
	FailSaves bool
}

// NewMemoryGateway starts from seed, or from an empty state with no seat
// stream when seed is nil.
func NewMemoryGateway(seed *Snapshot) *MemoryGateway {
	if seed == nil {
		return &MemoryGateway{}
	}
	return &MemoryGateway{snap: copySnapshot(seed)}
}

func (g *MemoryGateway) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snap == nil {
		return &Snapshot{SeatsMissing: true}, nil
	}
	return copySnapshot(g.snap), nil
}

func (g *MemoryGateway) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailSaves {
		return fmt.Errorf("%w: saves disabled", model.ErrPersistence)
	}
	g.snap = copySnapshot(snap)
	g.saves++
	return nil
}

// SetFailSaves toggles save failures.
func (g *MemoryGateway) SetFailSaves(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FailSaves = fail
}

// Saves reports how many saves succeeded.
func (g *MemoryGateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// Last returns a copy of the last saved snapshot, or nil.
func (g *MemoryGateway) Last() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snap == nil {
		return nil
	}
	return copySnapshot(g.snap)
}

func copySnapshot(s *Snapshot) *Snapshot {
	out := &Snapshot{
		Users:        append([]model.User(nil), s.Users...),
		Bookings:     append([]model.Booking(nil), s.Bookings...),
		Seats:        append([]model.SeatRecord(nil), s.Seats...),
		SeatsMissing: s.SeatsMissing,
	}
	for _, m := range s.Movies {
		out.Movies = append(out.Movies, m.Clone())
	}
	return out
}
