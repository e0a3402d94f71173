// Package service implements the booking ledger: it composes the seat maps,
// catalog, ledger and user directory, keeps them consistent with each other
// and persists a full snapshot after every change.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ledger/internal/metrics"
	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/queue"
	"github.com/iliyamo/cinema-ledger/internal/repository"
	"github.com/iliyamo/cinema-ledger/internal/store"
	"github.com/iliyamo/cinema-ledger/internal/utils"
)

// BookingUseCase is the set of operations the HTTP shell drives.
type BookingUseCase interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error)
	EditBooking(ctx context.Context, id int, in EditBookingInput) (model.Booking, error)
	CancelBooking(ctx context.Context, id int) (model.Booking, error)
	GetBooking(id int) (model.Booking, error)
	ListBookingsFor(username string) []model.Booking
	ListAllBookings() BookingsView

	AddMovie(ctx context.Context, title, genre string, price model.Money) (model.Movie, error)
	EditMovie(ctx context.Context, id int, patch MoviePatch) (model.Movie, error)
	DeleteMovie(ctx context.Context, id int, cascade bool) (DeleteMovieResult, error)
	AddSchedule(ctx context.Context, movieID int, date, clock string) (model.Movie, error)
	RemoveSchedule(ctx context.Context, movieID, index int) (model.Schedule, error)
	ListMovies() []model.Movie
	GetMovie(id int) (model.Movie, error)
	ListSchedulesFor(movieID int) ([]model.Schedule, error)

	AddSeat(ctx context.Context, movieID int, date, seat string) error
	RemoveSeat(ctx context.Context, movieID int, date, seat string) error
	ResizeSeats(ctx context.Context, movieID int, date string, rows, cols int) ([]model.SeatState, error)
	SeatLayout(movieID int, date string) ([]model.SeatState, error)
	IsSeatAvailable(movieID int, date, seat string) bool

	SalesReport() SalesReport
	CheckConsistency() []Drift

	Register(ctx context.Context, username, password, displayName string) (model.User, error)
	Authenticate(username, password string) (model.User, error)
	GetUser(username string) (model.User, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error)
}

var _ BookingUseCase = (*BookingService)(nil)

// state is everything a snapshot persists.
type state struct {
	catalog *store.Catalog
	ledger  *store.Ledger
	seats   *store.SeatMaps
	users   *store.Directory
}

func newState() state {
	return state{
		catalog: store.NewCatalog(),
		ledger:  store.NewLedger(),
		seats:   store.NewSeatMaps(),
		users:   store.NewDirectory(),
	}
}

func (st state) clone() state {
	return state{
		catalog: st.catalog.Clone(),
		ledger:  st.ledger.Clone(),
		seats:   st.seats.Clone(),
		users:   st.users.Clone(),
	}
}

// BookingService owns the in-memory collections. One mutex serializes every
// operation, so the check, mutate and persist steps of a booking never
// interleave with another request.
type BookingService struct {
	mu sync.Mutex
	st state
	gw repository.Gateway

	hasher  utils.PasswordHasher
	metrics *metrics.Metrics
	log     *slog.Logger

	publisher      queue.Publisher
	publishTimeout time.Duration
	events         chan queue.BookingEvent
	evMu           sync.Mutex
	closed         bool
	done           chan struct{}
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithPublisher sends booking events to p after each committed change.
func WithPublisher(p queue.Publisher) Option {
	return func(s *BookingService) { s.publisher = p }
}

// WithPasswordHasher selects how passwords are stored.
func WithPasswordHasher(h utils.PasswordHasher) Option {
	return func(s *BookingService) { s.hasher = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *BookingService) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BookingService) { s.metrics = m }
}

// WithPublishTimeout bounds each event delivery.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *BookingService) { s.publishTimeout = d }
}

// NewBookingService builds an empty service backed by gw. Call Load to read
// persisted state and Close to flush pending events.
func NewBookingService(gw repository.Gateway, opts ...Option) *BookingService {
	s := &BookingService{
		st:             newState(),
		gw:             gw,
		hasher:         utils.PlainPasswords{},
		log:            slog.Default(),
		publisher:      queue.NopPublisher{},
		publishTimeout: 5 * time.Second,
		events:         make(chan queue.BookingEvent, 256),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.deliver()
	return s
}

// Load replaces the in-memory state with the gateway's snapshot. Id
// counters restart one past the highest loaded id. When the seat stream is
// missing every (movie, date) gets a fresh default grid.
func (s *BookingService) Load(ctx context.Context) error {
	snap, err := s.gw.Load(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrPersistence) {
			err = fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		return err
	}

	st := newState()
	for _, u := range snap.Users {
		if err := st.users.Add(u); err != nil {
			s.log.Warn("skipping duplicate user", "username", u.Username)
		}
	}
	for _, m := range snap.Movies {
		if _, exists := st.catalog.Get(m.ID); exists {
			s.log.Warn("skipping duplicate movie", "movie_id", m.ID)
			continue
		}
		st.catalog.Put(m)
	}
	for _, b := range snap.Bookings {
		if _, exists := st.ledger.Get(b.ID); exists {
			s.log.Warn("skipping duplicate booking", "booking_id", b.ID)
			continue
		}
		st.ledger.Put(b)
	}
	if snap.SeatsMissing {
		for _, m := range st.catalog.List() {
			for _, date := range m.Dates() {
				st.seats.Initialize(m.ID, date)
			}
		}
		s.log.Warn("seat stream missing, regenerated default seat grids", "maps", len(st.seats.Keys()))
	} else {
		for _, r := range snap.Seats {
			st.seats.Set(r.MovieID, r.Date, r.Label, r.Available)
		}
	}

	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	s.metrics.SetActiveBookings(st.ledger.Len())
	s.log.Info("state loaded",
		"users", len(snap.Users), "movies", st.catalog.Len(),
		"bookings", st.ledger.Len(), "seat_maps", len(st.seats.Keys()))
	return nil
}

// Flush persists the current state. The server calls it on shutdown.
func (s *BookingService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx ends.
func (s *BookingService) Close(ctx context.Context) error {
	s.evMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.evMu.Unlock()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mutate runs fn against the live state under the lock and persists the
// result. Any error, from fn or from the save, restores the state captured
// before fn ran. Events are queued after a successful save and before the
// lock is released, so queue order matches commit order.
func (s *BookingService) mutate(ctx context.Context, op string, fn func() ([]queue.BookingEvent, error)) (err error) {
	defer s.observe(op, &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.st.clone()
	events, err := fn()
	if err == nil {
		err = s.save(ctx)
	}
	if err != nil {
		s.st = before
		return err
	}
	s.metrics.SetActiveBookings(s.st.ledger.Len())
	s.emit(events)
	return nil
}

// save writes the full snapshot. Callers hold s.mu.
func (s *BookingService) save(ctx context.Context) error {
	start := time.Now()
	err := s.gw.Save(ctx, s.snapshot())
	s.metrics.ObserveSave(time.Since(start))
	if err != nil {
		s.log.Error("failed to persist snapshot", "error", err)
		if !errors.Is(err, model.ErrPersistence) {
			err = fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		return err
	}
	return nil
}

func (s *BookingService) snapshot() *repository.Snapshot {
	return &repository.Snapshot{
		Users:    s.st.users.List(),
		Movies:   s.st.catalog.List(),
		Bookings: s.st.ledger.All(),
		Seats:    s.st.seats.Records(),
	}
}

func (s *BookingService) observe(op string, err *error) {
	s.metrics.Operation(op, Kind(*err))
}

// emit never blocks: a full queue drops the event. Callers hold s.mu.
func (s *BookingService) emit(events []queue.BookingEvent) {
	if len(events) == 0 {
		return
	}
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.closed {
		return
	}
	for _, ev := range events {
		select {
		case s.events <- ev:
		default:
			s.log.Warn("event queue full, dropping booking event", "event_id", ev.EventID, "type", ev.Type)
			s.metrics.EventPublished(false)
		}
	}
}

// deliver publishes queued events in order. Failures are logged and never
// reach the caller of the booking operation.
func (s *BookingService) deliver() {
	defer close(s.done)
	for ev := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		err := s.publisher.Publish(ctx, ev)
		cancel()
		s.metrics.EventPublished(err == nil)
		if err != nil {
			s.log.Warn("failed to publish booking event", "event_id", ev.EventID, "type", ev.Type, "booking_id", ev.BookingID, "error", err)
		}
	}
}
