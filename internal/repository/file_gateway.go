package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Stream file names inside the data directory.
const (
	UsersFile    = "users.txt"
	MoviesFile   = "movies.txt"
	BookingsFile = "bookings.txt"
	SeatsFile    = "seats.txt"
)

// FileGateway stores each stream as a comma-delimited text file in Dir.
// Save stages every stream in a temp file before renaming any of them.
type FileGateway struct {
	Dir string
	Log *slog.Logger
}

func NewFileGateway(dir string, log *slog.Logger) *FileGateway {
	if log == nil {
		log = slog.Default()
	}
	return &FileGateway{Dir: dir, Log: log}
}

// Load reads users, movies, bookings, then seats. Missing files read as
// empty streams; a missing seats file sets SeatsMissing.
func (g *FileGateway) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := g.readStream(ctx, UsersFile, func(rec []string) error {
		u, err := decodeUser(rec)
		if err == nil {
			snap.Users = append(snap.Users, u)
		}
		return err
	}); err != nil {
		return nil, err
	}
	if err := g.readStream(ctx, MoviesFile, func(rec []string) error {
		m, err := decodeMovie(rec)
		if err == nil {
			snap.Movies = append(snap.Movies, m)
		}
		return err
	}); err != nil {
		return nil, err
	}
	if err := g.readStream(ctx, BookingsFile, func(rec []string) error {
		b, err := decodeBooking(rec)
		if err == nil {
			snap.Bookings = append(snap.Bookings, b)
		}
		return err
	}); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(g.Dir, SeatsFile)); errors.Is(err, fs.ErrNotExist) {
		snap.SeatsMissing = true
		return snap, nil
	}
	if err := g.readStream(ctx, SeatsFile, func(rec []string) error {
		s, err := decodeSeat(rec)
		if err == nil {
			snap.Seats = append(snap.Seats, s)
		}
		return err
	}); err != nil {
		return nil, err
	}
	return snap, nil
}

func (g *FileGateway) readStream(ctx context.Context, name string, apply func([]string) error) error {
	path := filepath.Join(g.Dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", model.ErrPersistence, name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				g.Log.Warn("skipping unreadable record", "stream", name, "line", line, "error", err)
				continue
			}
			return fmt.Errorf("%w: read %s: %v", model.ErrPersistence, name, err)
		}
		if err := apply(rec); err != nil {
			g.Log.Warn("skipping malformed record", "stream", name, "line", line, "record", rec, "error", err)
		}
	}
}

// Save rewrites all four streams.
func (g *FileGateway) Save(ctx context.Context, snap *Snapshot) error {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", model.ErrPersistence, g.Dir, err)
	}
	users := make([][]string, 0, len(snap.Users))
	for _, u := range snap.Users {
		users = append(users, encodeUser(u))
	}
	movies := make([][]string, 0, len(snap.Movies))
	for _, m := range snap.Movies {
		movies = append(movies, encodeMovie(m))
	}
	bookings := make([][]string, 0, len(snap.Bookings))
	for _, b := range snap.Bookings {
		bookings = append(bookings, encodeBooking(b))
	}
	seats := make([][]string, 0, len(snap.Seats))
	for _, s := range snap.Seats {
		seats = append(seats, encodeSeat(s))
	}
	streams := []struct {
		name    string
		records [][]string
	}{
		{UsersFile, users},
		{MoviesFile, movies},
		{BookingsFile, bookings},
		{SeatsFile, seats},
	}

	// All temp files are written and every target checked before the first
	// rename, so a failure here leaves every stream on disk untouched.
	staged := make([]string, 0, len(streams))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, stream := range streams {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		if err := g.checkTarget(stream.name); err != nil {
			return err
		}
		tmp, err := g.stageStream(stream.name, stream.records)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, stream := range streams {
		if err := os.Rename(staged[i], filepath.Join(g.Dir, stream.name)); err != nil {
			return fmt.Errorf("%w: replace %s: %v", model.ErrPersistence, stream.name, err)
		}
	}
	return nil
}

// checkTarget fails when name cannot be replaced by a rename.
func (g *FileGateway) checkTarget(name string) error {
	info, err := os.Lstat(filepath.Join(g.Dir, name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("%w: stat %s: %v", model.ErrPersistence, name, err)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w: replace %s: not a regular file", model.ErrPersistence, name)
	}
	return nil
}

// stageStream writes records to a closed temp file next to name and
// returns its path.
func (g *FileGateway) stageStream(name string, records [][]string) (string, error) {
	tmp, err := os.CreateTemp(g.Dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp for %s: %v", model.ErrPersistence, name, err)
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: write %s: %v", model.ErrPersistence, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: close %s: %v", model.ErrPersistence, name, err)
	}
	return tmp.Name(), nil
}

// Record layouts:
//  users:    role, username, password[, displayName]
//  movies:   id, title, genre, price[, date, time]...
//  bookings: id, customer, movieID, date, time, seat, price, paymentMode
//  seats:    movieID, date, seat, available(1|0)

func encodeUser(u model.User) []string {
	rec := []string{string(u.Role), u.Username, u.Password}
	if u.Role == model.RoleCustomer {
		rec = append(rec, u.DisplayName)
	}
	return rec
}

func decodeUser(rec []string) (model.User, error) {
	if len(rec) < 3 {
		return model.User{}, fmt.Errorf("%w: want at least 3 fields, got %d", ErrMalformedRecord, len(rec))
	}
	role, err := model.ParseRole(rec[0])
	if err != nil {
		return model.User{}, err
	}
	if rec[1] == "" {
		return model.User{}, fmt.Errorf("%w: empty username", ErrMalformedRecord)
	}
	u := model.User{Role: role, Username: rec[1], Password: rec[2]}
	if role == model.RoleCustomer && len(rec) > 3 {
		u.DisplayName = rec[3]
	}
	return u, nil
}

func encodeMovie(m model.Movie) []string {
	rec := []string{strconv.Itoa(m.ID), m.Title, m.Genre, m.Price.String()}
	for _, s := range m.Schedules {
		rec = append(rec, s.Date, s.Time)
	}
	return rec
}

func decodeMovie(rec []string) (model.Movie, error) {
	if len(rec) < 4 || (len(rec)-4)%2 != 0 {
		return model.Movie{}, fmt.Errorf("%w: movie needs 4 fields plus date/time pairs, got %d", ErrMalformedRecord, len(rec))
	}
	id, err := strconv.Atoi(rec[0])
	if err != nil || id < 1 {
		return model.Movie{}, fmt.Errorf("%w: movie id %q", ErrMalformedRecord, rec[0])
	}
	price, err := model.ParseMoney(rec[3])
	if err != nil {
		return model.Movie{}, err
	}
	m := model.Movie{ID: id, Title: rec[1], Genre: rec[2], Price: price}
	for i := 4; i+1 < len(rec); i += 2 {
		s, err := model.NewSchedule(rec[i], rec[i+1])
		if err != nil {
			return model.Movie{}, err
		}
		m.Schedules = append(m.Schedules, s)
	}
	return m, nil
}

func encodeBooking(b model.Booking) []string {
	return []string{
		strconv.Itoa(b.ID), b.CustomerUsername, strconv.Itoa(b.MovieID),
		b.Schedule.Date, b.Schedule.Time, b.Seat, b.Price.String(), string(b.PaymentMode),
	}
}

func decodeBooking(rec []string) (model.Booking, error) {
	if len(rec) != 8 {
		return model.Booking{}, fmt.Errorf("%w: booking needs 8 fields, got %d", ErrMalformedRecord, len(rec))
	}
	id, err := strconv.Atoi(rec[0])
	if err != nil || id < 1 {
		return model.Booking{}, fmt.Errorf("%w: booking id %q", ErrMalformedRecord, rec[0])
	}
	movieID, err := strconv.Atoi(rec[2])
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: movie id %q", ErrMalformedRecord, rec[2])
	}
	sched, err := model.NewSchedule(rec[3], rec[4])
	if err != nil {
		return model.Booking{}, err
	}
	price, err := model.ParseMoney(rec[6])
	if err != nil {
		return model.Booking{}, err
	}
	mode, err := model.ParsePaymentMode(rec[7])
	if err != nil {
		return model.Booking{}, err
	}
	return model.Booking{
		ID: id, CustomerUsername: rec[1], MovieID: movieID, Schedule: sched,
		Seat: rec[5], Price: price, PaymentMode: mode,
	}, nil
}

func encodeSeat(s model.SeatRecord) []string {
	flag := "0"
	if s.Available {
		flag = "1"
	}
	return []string{strconv.Itoa(s.MovieID), s.Date, s.Label, flag}
}

func decodeSeat(rec []string) (model.SeatRecord, error) {
	if len(rec) != 4 {
		return model.SeatRecord{}, fmt.Errorf("%w: seat needs 4 fields, got %d", ErrMalformedRecord, len(rec))
	}
	movieID, err := strconv.Atoi(rec[0])
	if err != nil {
		return model.SeatRecord{}, fmt.Errorf("%w: movie id %q", ErrMalformedRecord, rec[0])
	}
	if rec[3] != "0" && rec[3] != "1" {
		return model.SeatRecord{}, fmt.Errorf("%w: availability flag %q", ErrMalformedRecord, rec[3])
	}
	return model.SeatRecord{MovieID: movieID, Date: rec[1], Label: rec[2], Available: rec[3] == "1"}, nil
}
