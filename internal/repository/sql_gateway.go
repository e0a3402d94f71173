package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Dialect selects placeholder syntax for the SQL gateway.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// SQLGateway stores the snapshot in five tables. Save replaces every row
// inside one transaction.
type SQLGateway struct {
	DB      *sql.DB
	Dialect Dialect
	Log     *slog.Logger
}

func NewSQLGateway(db *sql.DB, dialect Dialect, log *slog.Logger) *SQLGateway {
	if log == nil {
		log = slog.Default()
	}
	return &SQLGateway{DB: db, Dialect: dialect, Log: log}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username VARCHAR(64) PRIMARY KEY,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		position INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id INT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		genre VARCHAR(255) NOT NULL,
		price_cents BIGINT NOT NULL,
		position INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie_schedules (
		movie_id INT NOT NULL,
		position INT NOT NULL,
		show_date VARCHAR(10) NOT NULL,
		show_time VARCHAR(5) NOT NULL,
		PRIMARY KEY (movie_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INT PRIMARY KEY,
		customer_username VARCHAR(64) NOT NULL,
		movie_id INT NOT NULL,
		show_date VARCHAR(10) NOT NULL,
		show_time VARCHAR(5) NOT NULL,
		seat VARCHAR(16) NOT NULL,
		price_cents BIGINT NOT NULL,
		payment_mode VARCHAR(32) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		movie_id INT NOT NULL,
		show_date VARCHAR(10) NOT NULL,
		seat_label VARCHAR(16) NOT NULL,
		available BOOLEAN NOT NULL,
		PRIMARY KEY (movie_id, show_date, seat_label)
	)`,
}

// EnsureSchema creates the tables when they do not exist.
func (g *SQLGateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := g.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create schema: %v", model.ErrPersistence, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $1, $2... for postgres.
func (g *SQLGateway) rebind(q string) string {
	if g.Dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load reads all tables. An empty seats table while schedules exist is
// reported as a missing seat stream.
func (g *SQLGateway) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := g.DB.QueryContext(ctx, "SELECT username, password, role, display_name FROM users ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %v", model.ErrPersistence, err)
	}
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.Username, &u.Password, &role, &u.DisplayName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan user: %v", model.ErrPersistence, err)
		}
		r, err := model.ParseRole(role)
		if err != nil {
			g.Log.Warn("skipping malformed record", "stream", "users", "username", u.Username, "error", err)
			continue
		}
		u.Role = r
		snap.Users = append(snap.Users, u)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = g.DB.QueryContext(ctx, "SELECT id, title, genre, price_cents FROM movies ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: query movies: %v", model.ErrPersistence, err)
	}
	index := make(map[int]int)
	for rows.Next() {
		var m model.Movie
		var cents int64
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &cents); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan movie: %v", model.ErrPersistence, err)
		}
		m.Price = model.Money(cents)
		index[m.ID] = len(snap.Movies)
		snap.Movies = append(snap.Movies, m)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = g.DB.QueryContext(ctx, "SELECT movie_id, show_date, show_time FROM movie_schedules ORDER BY movie_id, position")
	if err != nil {
		return nil, fmt.Errorf("%w: query schedules: %v", model.ErrPersistence, err)
	}
	schedules := 0
	for rows.Next() {
		var movieID int
		var date, clock string
		if err := rows.Scan(&movieID, &date, &clock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan schedule: %v", model.ErrPersistence, err)
		}
		i, ok := index[movieID]
		if !ok {
			g.Log.Warn("skipping orphan schedule", "movie_id", movieID, "date", date, "time", clock)
			continue
		}
		s, err := model.NewSchedule(date, clock)
		if err != nil {
			g.Log.Warn("skipping malformed record", "stream", "movie_schedules", "movie_id", movieID, "error", err)
			continue
		}
		snap.Movies[i].Schedules = append(snap.Movies[i].Schedules, s)
		schedules++
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = g.DB.QueryContext(ctx, "SELECT id, customer_username, movie_id, show_date, show_time, seat, price_cents, payment_mode FROM bookings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: query bookings: %v", model.ErrPersistence, err)
	}
	for rows.Next() {
		var b model.Booking
		var cents int64
		var mode string
		if err := rows.Scan(&b.ID, &b.CustomerUsername, &b.MovieID, &b.Schedule.Date, &b.Schedule.Time, &b.Seat, &cents, &mode); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan booking: %v", model.ErrPersistence, err)
		}
		pm, err := model.ParsePaymentMode(mode)
		if err != nil {
			g.Log.Warn("skipping malformed record", "stream", "bookings", "id", b.ID, "error", err)
			continue
		}
		b.Price = model.Money(cents)
		b.PaymentMode = pm
		snap.Bookings = append(snap.Bookings, b)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = g.DB.QueryContext(ctx, "SELECT movie_id, show_date, seat_label, available FROM seats ORDER BY movie_id, show_date")
	if err != nil {
		return nil, fmt.Errorf("%w: query seats: %v", model.ErrPersistence, err)
	}
	for rows.Next() {
		var s model.SeatRecord
		if err := rows.Scan(&s.MovieID, &s.Date, &s.Label, &s.Available); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan seat: %v", model.ErrPersistence, err)
		}
		snap.Seats = append(snap.Seats, s)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	snap.SeatsMissing = len(snap.Seats) == 0 && schedules > 0
	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("%w: iterate rows: %v", model.ErrPersistence, err)
	}
	return rows.Close()
}

// Save replaces every row in a single transaction.
func (g *SQLGateway) Save(ctx context.Context, snap *Snapshot) (err error) {
	tx, err := g.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", model.ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"seats", "bookings", "movie_schedules", "movies", "users"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", model.ErrPersistence, table, err)
		}
	}

	exec := func(q string, args ...any) error {
		if _, err := tx.ExecContext(ctx, g.rebind(q), args...); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		return nil
	}
	for i, u := range snap.Users {
		if err = exec("INSERT INTO users (username, password, role, display_name, position) VALUES (?,?,?,?,?)",
			u.Username, u.Password, string(u.Role), u.DisplayName, i); err != nil {
			return err
		}
	}
	for i, m := range snap.Movies {
		if err = exec("INSERT INTO movies (id, title, genre, price_cents, position) VALUES (?,?,?,?,?)",
			m.ID, m.Title, m.Genre, int64(m.Price), i); err != nil {
			return err
		}
		for pos, s := range m.Schedules {
			if err = exec("INSERT INTO movie_schedules (movie_id, position, show_date, show_time) VALUES (?,?,?,?)",
				m.ID, pos, s.Date, s.Time); err != nil {
				return err
			}
		}
	}
	for _, b := range snap.Bookings {
		if err = exec("INSERT INTO bookings (id, customer_username, movie_id, show_date, show_time, seat, price_cents, payment_mode) VALUES (?,?,?,?,?,?,?,?)",
			b.ID, b.CustomerUsername, b.MovieID, b.Schedule.Date, b.Schedule.Time, b.Seat, int64(b.Price), string(b.PaymentMode)); err != nil {
			return err
		}
	}
	for _, s := range snap.Seats {
		if err = exec("INSERT INTO seats (movie_id, show_date, seat_label, available) VALUES (?,?,?,?)",
			s.MovieID, s.Date, s.Label, s.Available); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", model.ErrPersistence, err)
	}
	return nil
}
